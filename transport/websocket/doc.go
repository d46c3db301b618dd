// Package websocket pushes live scoresheet updates to viewers.
//
// A judge scores on one device while any number of second screens watch the
// same sheet. Viewers connect with the sheet ID as a query parameter
// (/ws?sheet=ab12) and receive:
//   - a "snapshot" message with the current state right after connecting
//   - a "state_update" message after every action on the sheet
//
// State messages carry seq, the sheet's action count. Updates that reach the
// hub out of order are dropped per viewer, so a viewer only moves forward.
//   - a "sheet_deleted" event when the sheet goes away
//
// Usage:
//
//	hub := websocket.NewHub(log, metrics.WebSocketClients)
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, sheetID, func() (*scoring.SheetState, error) {
//		return sheet.Snapshot(), nil
//	})
//	hub.BroadcastToSheet(sheetID, sheet.Snapshot())
//
// The client registry is guarded by a mutex, so broadcasts may come from any
// goroutine. Viewers never send commands; incoming frames only keep the
// connection alive.
package websocket
