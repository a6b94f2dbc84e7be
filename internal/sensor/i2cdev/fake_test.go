package i2cdev

import (
	"errors"
	"time"
)

// fakeConn is an in-memory device. Register reads come from regs, block
// reads from blocks, and plain reads pop from the reads queue.
type fakeConn struct {
	regs   map[uint8]uint8
	blocks map[uint8][]byte
	reads  [][]byte

	writes    [][]byte
	regWrites []regWrite
	readErr   error
	writeErr  error
	closed    bool
}

type regWrite struct {
	reg, val uint8
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		regs:   make(map[uint8]uint8),
		blocks: make(map[uint8][]byte),
	}
}

func (c *fakeConn) Read(p []byte) (int, error) {
	if c.readErr != nil {
		return 0, c.readErr
	}
	if len(c.reads) == 0 {
		return 0, errors.New("nack")
	}
	next := c.reads[0]
	c.reads = c.reads[1:]
	return copy(p, next), nil
}

func (c *fakeConn) Write(p []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	c.writes = append(c.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (c *fakeConn) ReadByteData(reg uint8) (uint8, error) {
	if c.readErr != nil {
		return 0, c.readErr
	}
	v, ok := c.regs[reg]
	if !ok {
		return 0, errors.New("nack")
	}
	return v, nil
}

func (c *fakeConn) WriteByteData(reg uint8, val uint8) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	c.regWrites = append(c.regWrites, regWrite{reg, val})
	return nil
}

func (c *fakeConn) ReadBlockData(reg uint8, data []byte) error {
	if c.readErr != nil {
		return c.readErr
	}
	b, ok := c.blocks[reg]
	if !ok {
		return errors.New("nack")
	}
	copy(data, b)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

// fakeBus serves one fakeConn per address.
type fakeBus struct {
	devices map[int]*fakeConn
}

func (b *fakeBus) Open(address int) (Conn, error) {
	c, ok := b.devices[address]
	if !ok {
		return nil, errors.New("no such device")
	}
	return c, nil
}

func busWith(address int, c *fakeConn) *fakeBus {
	return &fakeBus{devices: map[int]*fakeConn{address: c}}
}

func noSleep(time.Duration) {}
