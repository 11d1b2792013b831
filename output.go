package main

// Output is the text sink of the kernel. Bytes leave through the serial
// transmit register.
type Output struct {
	io      *IO
	written int
}

// NewOutput creates New Output
func NewOutput(io *IO) *Output {
	return &Output{io: io}
}

func (o *Output) write(p []byte) {
	for _, b := range p {
		o.io.out8(PortCOM1, b)
	}
	o.written += len(p)
}

// Written returns the number of bytes sent so far
func (o *Output) Written() int {
	return o.written
}
