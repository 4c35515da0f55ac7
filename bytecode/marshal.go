package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/fathom-lang/fathom/op"
	"github.com/fathom-lang/fathom/types"
)

// Wire format, all little-endian:
//
//	magic   [3]byte "FBC"
//	version uint8   (currently 1)
//	iterations uint64
//	output  uint32  (packed operand)
//	register counts, 4 x uint32 in class order {Scalar, Vector, Boolean, String}
//	scalar pool:  uint32 count, then count x float64 bits
//	vector pool:  uint32 count, then per vector uint32 length + float64 bits
//	boolean pool: uint32 count, then count x uint8
//	string pool:  uint32 count, then per string uint32 length + raw bytes
//	instructions: uint32 count, then per instruction:
//	    uint16 opcode, uint16 source count, uint16 destination count,
//	    sources then destinations as packed uint32 operands
//
// Operands travel packed only here; in memory they stay structured. Any
// change to this layout or to the packed operand bit split is a breaking
// wire-compatibility change requiring version negotiation with the runtime.

var magic = [3]byte{'F', 'B', 'C'}

// Version is the wire format version this compiler emits.
const Version = 1

// Marshal serializes the program. Compiling the same script twice yields
// byte-identical output, since pools, registers and instructions are all in
// deterministic first-appearance order.
func Marshal(p *Program) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid program: %w", err)
	}
	var b bytes.Buffer
	b.Write(magic[:])
	b.WriteByte(Version)

	writeU64(&b, p.Iterations)
	packed, err := p.Output.Pack()
	if err != nil {
		return nil, err
	}
	writeU32(&b, uint32(packed))
	for _, class := range types.Classes {
		writeU32(&b, p.RegisterCounts[class])
	}

	writeU32(&b, uint32(len(p.ScalarPool)))
	for _, v := range p.ScalarPool {
		writeU64(&b, math.Float64bits(v))
	}
	writeU32(&b, uint32(len(p.VectorPool)))
	for _, vec := range p.VectorPool {
		writeU32(&b, uint32(len(vec)))
		for _, v := range vec {
			writeU64(&b, math.Float64bits(v))
		}
	}
	writeU32(&b, uint32(len(p.BoolPool)))
	for _, v := range p.BoolPool {
		if v {
			b.WriteByte(1)
		} else {
			b.WriteByte(0)
		}
	}
	writeU32(&b, uint32(len(p.StringPool)))
	for _, s := range p.StringPool {
		writeU32(&b, uint32(len(s)))
		b.WriteString(s)
	}

	writeU32(&b, uint32(len(p.Instructions)))
	for _, ins := range p.Instructions {
		var u16 [2]byte
		binary.LittleEndian.PutUint16(u16[:], uint16(ins.Op))
		b.Write(u16[:])
		binary.LittleEndian.PutUint16(u16[:], uint16(len(ins.Src)))
		b.Write(u16[:])
		binary.LittleEndian.PutUint16(u16[:], uint16(len(ins.Dst)))
		b.Write(u16[:])
		for _, o := range ins.Src {
			packed, err := o.Pack()
			if err != nil {
				return nil, err
			}
			writeU32(&b, uint32(packed))
		}
		for _, o := range ins.Dst {
			packed, err := o.Pack()
			if err != nil {
				return nil, err
			}
			writeU32(&b, uint32(packed))
		}
	}
	return b.Bytes(), nil
}

// Unmarshal deserializes a program and revalidates it.
func Unmarshal(data []byte) (*Program, error) {
	r := &reader{data: data}
	var head [4]byte
	if err := r.read(head[:]); err != nil {
		return nil, fmt.Errorf("truncated header: %w", err)
	}
	if head[0] != magic[0] || head[1] != magic[1] || head[2] != magic[2] {
		return nil, fmt.Errorf("not a Fathom bytecode file")
	}
	if head[3] != Version {
		return nil, fmt.Errorf("unsupported bytecode version %d (compiler supports %d)", head[3], Version)
	}

	p := &Program{}
	var err error
	if p.Iterations, err = r.u64(); err != nil {
		return nil, err
	}
	rawOutput, err := r.u32()
	if err != nil {
		return nil, err
	}
	if p.Output, err = types.Unpack(types.Packed(rawOutput)); err != nil {
		return nil, err
	}
	for _, class := range types.Classes {
		if p.RegisterCounts[class], err = r.u32(); err != nil {
			return nil, err
		}
	}

	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	if err := r.remaining(n, 8); err != nil {
		return nil, err
	}
	p.ScalarPool = make([]float64, 0, n)
	for i := uint32(0); i < n; i++ {
		bits, err := r.u64()
		if err != nil {
			return nil, err
		}
		p.ScalarPool = append(p.ScalarPool, math.Float64frombits(bits))
	}

	if n, err = r.u32(); err != nil {
		return nil, err
	}
	if err := r.remaining(n, 4); err != nil {
		return nil, err
	}
	p.VectorPool = make([][]float64, 0, n)
	for i := uint32(0); i < n; i++ {
		length, err := r.u32()
		if err != nil {
			return nil, err
		}
		if err := r.remaining(length, 8); err != nil {
			return nil, err
		}
		vec := make([]float64, 0, length)
		for j := uint32(0); j < length; j++ {
			bits, err := r.u64()
			if err != nil {
				return nil, err
			}
			vec = append(vec, math.Float64frombits(bits))
		}
		p.VectorPool = append(p.VectorPool, vec)
	}

	if n, err = r.u32(); err != nil {
		return nil, err
	}
	if err := r.remaining(n, 1); err != nil {
		return nil, err
	}
	p.BoolPool = make([]bool, 0, n)
	for i := uint32(0); i < n; i++ {
		v, err := r.u8()
		if err != nil {
			return nil, err
		}
		p.BoolPool = append(p.BoolPool, v != 0)
	}

	if n, err = r.u32(); err != nil {
		return nil, err
	}
	if err := r.remaining(n, 4); err != nil {
		return nil, err
	}
	p.StringPool = make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		length, err := r.u32()
		if err != nil {
			return nil, err
		}
		if err := r.remaining(length, 1); err != nil {
			return nil, err
		}
		raw := make([]byte, length)
		if err := r.read(raw); err != nil {
			return nil, err
		}
		p.StringPool = append(p.StringPool, string(raw))
	}

	if n, err = r.u32(); err != nil {
		return nil, err
	}
	if err := r.remaining(n, 6); err != nil {
		return nil, err
	}
	p.Instructions = make([]Instruction, 0, n)
	tainted := make(map[types.Operand]bool)
	for i := uint32(0); i < n; i++ {
		code, err := r.u16()
		if err != nil {
			return nil, err
		}
		srcCount, err := r.u16()
		if err != nil {
			return nil, err
		}
		dstCount, err := r.u16()
		if err != nil {
			return nil, err
		}
		ins := Instruction{Op: op.Code(code)}
		for j := uint16(0); j < srcCount; j++ {
			o, err := r.operand()
			if err != nil {
				return nil, err
			}
			ins.Src = append(ins.Src, o)
		}
		for j := uint16(0); j < dstCount; j++ {
			o, err := r.operand()
			if err != nil {
				return nil, err
			}
			ins.Dst = append(ins.Dst, o)
		}
		// The wire format has no taint bit. Recompute it the way the
		// compiler derives it: an instruction is stochastic if its opcode
		// samples randomness or if it reads a register written by a
		// stochastic instruction earlier in the stream.
		ins.Stochastic = op.GetInfo(ins.Op).Stochastic
		for _, o := range ins.Src {
			if o.Kind == types.Register && tainted[o] {
				ins.Stochastic = true
			}
		}
		// A write always sets the register's taint: a deterministic
		// rebind of a previously tainted register clears it, same as the
		// compiler's analysis.
		for _, o := range ins.Dst {
			tainted[o] = ins.Stochastic
		}
		p.Instructions = append(p.Instructions, ins)
	}

	if r.pos != len(r.data) {
		return nil, fmt.Errorf("%d trailing bytes after instruction stream", len(r.data)-r.pos)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid program: %w", err)
	}
	return p, nil
}

func writeU32(b *bytes.Buffer, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	b.Write(buf[:])
}

func writeU64(b *bytes.Buffer, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	b.Write(buf[:])
}

type reader struct {
	data []byte
	pos  int
}

func (r *reader) read(dst []byte) error {
	if r.pos+len(dst) > len(r.data) {
		return fmt.Errorf("unexpected end of bytecode at offset %d", r.pos)
	}
	copy(dst, r.data[r.pos:])
	r.pos += len(dst)
	return nil
}

// remaining reports an error when count elements of the given byte width
// cannot possibly fit in the unread input. Checking before allocating keeps a
// corrupt length field from triggering a huge allocation.
func (r *reader) remaining(count uint32, width int) error {
	if uint64(count)*uint64(width) > uint64(len(r.data)-r.pos) {
		return fmt.Errorf("declared length %d exceeds remaining input at offset %d", count, r.pos)
	}
	return nil
}

func (r *reader) u8() (byte, error) {
	var buf [1]byte
	if err := r.read(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (r *reader) u16() (uint16, error) {
	var buf [2]byte
	if err := r.read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func (r *reader) u32() (uint32, error) {
	var buf [4]byte
	if err := r.read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (r *reader) u64() (uint64, error) {
	var buf [8]byte
	if err := r.read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func (r *reader) operand() (types.Operand, error) {
	raw, err := r.u32()
	if err != nil {
		return types.Operand{}, err
	}
	return types.Unpack(types.Packed(raw))
}
