package ecs

import (
	"reflect"
	"unsafe"
)

// column is the densely packed, row-aligned storage of one component type in
// one archetype. The backing array is a real []T created through reflect so
// the garbage collector sees any pointers inside component values; rows
// [0, len) are live and rows [len, cap) are zero.
type column struct {
	desc      ComponentDescriptor
	sliceType reflect.Type
	data      reflect.Value
	base      unsafe.Pointer
	len       int
}

func newColumn(desc ComponentDescriptor, capacity int) *column {
	c := &column{
		desc:      desc,
		sliceType: reflect.SliceOf(desc.Type),
	}
	c.data = reflect.MakeSlice(c.sliceType, capacity, capacity)
	c.base = c.data.UnsafePointer()
	return c
}

func (c *column) capacity() int {
	return c.data.Len()
}

func (c *column) grow(n int) {
	needed := c.len + n
	if needed <= c.capacity() {
		return
	}
	newCap := max(needed, 2*c.capacity(), 4)
	grown := reflect.MakeSlice(c.sliceType, newCap, newCap)
	reflect.Copy(grown, c.data.Slice(0, c.len))
	c.data = grown
	c.base = grown.UnsafePointer()
}

func (c *column) ptr(row int) unsafe.Pointer {
	return unsafe.Add(c.base, uintptr(row)*c.desc.Size)
}

// bytes views the raw bytes of row. The slice aliases column memory and is
// invalidated by the next structural change to the archetype.
func (c *column) bytes(row int) []byte {
	return unsafe.Slice((*byte)(c.ptr(row)), c.desc.Size)
}

// ref returns a *T for row as an interface value.
func (c *column) ref(row int) any {
	return reflect.NewAt(c.desc.Type, c.ptr(row)).Interface()
}

func (c *column) appendZero() int {
	c.grow(1)
	row := c.len
	c.len++
	return row
}

func (c *column) set(row int, v reflect.Value) {
	c.data.Index(row).Set(v)
}

func (c *column) copyFrom(dstRow int, src *column, srcRow int) {
	if c.desc.pointerFree {
		copy(c.bytes(dstRow), src.bytes(srcRow))
		return
	}
	c.data.Index(dstRow).Set(src.data.Index(srcRow))
}

func (c *column) zero(row int) {
	if c.desc.pointerFree {
		clear(c.bytes(row))
		return
	}
	c.data.Index(row).SetZero()
}

// swapRemove moves the last row into row and shrinks the column by one.
func (c *column) swapRemove(row int) {
	last := c.len - 1
	if row != last {
		c.copyFrom(row, c, last)
	}
	c.zero(last)
	c.len--
}
