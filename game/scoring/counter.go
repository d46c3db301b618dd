package scoring

// Counter is a non-negative task count bounded by Max
type Counter struct {
	Value int `json:"value"`
	Max   int `json:"max"`
}

// NewCounter creates a counter at zero
func NewCounter(max int) *Counter {
	if max < 0 {
		max = 0
	}
	return &Counter{Max: max}
}

// Increment adds one unless the counter is already at Max
func (c *Counter) Increment() bool {
	return c.IncrementTo(c.Max)
}

// IncrementTo adds one unless the counter is at ceiling (or Max, whichever is lower)
func (c *Counter) IncrementTo(ceiling int) bool {
	if ceiling > c.Max {
		ceiling = c.Max
	}
	if c.Value >= ceiling {
		return false
	}
	c.Value++
	return true
}

// Decrement subtracts one unless the counter is already at zero
func (c *Counter) Decrement() bool {
	if c.Value <= 0 {
		return false
	}
	c.Value--
	return true
}

// Reset sets the counter back to zero
func (c *Counter) Reset() {
	c.Value = 0
}

// Clamp bounds v to [0, max]
func Clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
