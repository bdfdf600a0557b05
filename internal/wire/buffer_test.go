package wire

import (
	"reflect"
	"testing"
)

func TestAppendAndBytes(t *testing.T) {
	b := New()
	b.Append([]byte{1, 2, 3})
	b.AppendByte(4)
	b.AppendString("x")
	want := []byte{1, 2, 3, 4, 'x'}
	if got := b.Bytes(); !reflect.DeepEqual(got, want) {
		t.Errorf("Bytes() = %v, want %v", got, want)
	}
}

func TestAppendBufferRange(t *testing.T) {
	src := NewFromBytes([]byte{10, 20, 30, 40, 50})
	dst := New()
	dst.AppendBufferRange(src, 1, 3)
	want := []byte{20, 30, 40}
	if got := dst.Bytes(); !reflect.DeepEqual(got, want) {
		t.Errorf("AppendBufferRange: got %v, want %v", got, want)
	}

	// out of range is a no-op
	dst2 := New()
	dst2.AppendBufferRange(src, 3, 10)
	if got := dst2.Len(); got != 0 {
		t.Errorf("AppendBufferRange out of range: got len %d, want 0", got)
	}
}

func TestEraseRange(t *testing.T) {
	b := NewFromBytes([]byte{1, 2, 3, 4, 5})
	b.EraseRange(1, 2)
	want := []byte{1, 4, 5}
	if got := b.Bytes(); !reflect.DeepEqual(got, want) {
		t.Errorf("EraseRange: got %v, want %v", got, want)
	}
}

func TestErase(t *testing.T) {
	b := NewFromBytes([]byte{1, 2, 3})
	b.Erase(1)
	want := []byte{1, 3}
	if got := b.Bytes(); !reflect.DeepEqual(got, want) {
		t.Errorf("Erase: got %v, want %v", got, want)
	}
}

func TestShrink(t *testing.T) {
	b := NewFromBytes([]byte{1, 2, 3, 4, 5})
	b.Shrink(2)
	want := []byte{1, 2}
	if got := b.Bytes(); !reflect.DeepEqual(got, want) {
		t.Errorf("Shrink: got %v, want %v", got, want)
	}
	// shrinking to a larger size is a no-op
	b.Shrink(100)
	if got := b.Len(); got != 2 {
		t.Errorf("Shrink no-op: got len %d, want 2", got)
	}
}

func TestIndex(t *testing.T) {
	b := NewFromBytes([]byte("abc0\r\n\r\ndef"))
	if i := b.Index([]byte("\r\n\r\n"), 0); i != 4 {
		t.Errorf("Index = %d, want 4", i)
	}
	if i := b.Index([]byte("zz"), 0); i != -1 {
		t.Errorf("Index = %d, want -1", i)
	}
}

func TestClone(t *testing.T) {
	b := NewFromBytes([]byte{1, 2, 3})
	c := b.Clone()
	c.AppendByte(4)
	if b.Len() != 3 {
		t.Errorf("Clone aliased original buffer, b.Len() = %d, want 3", b.Len())
	}
}
