package layout

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Kind identifies the encoding of a struct field.
type Kind uint8

const (
	KindU8 Kind = iota + 1
	KindBool
	KindU32
	KindU64
	KindU128
	KindPublicKey
	KindBlob
)

func (k Kind) String() string {
	switch k {
	case KindU8:
		return "u8"
	case KindBool:
		return "bool"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindU128:
		return "u128"
	case KindPublicKey:
		return "publicKey"
	case KindBlob:
		return "blob"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Field is a named, fixed-width member of a Struct. Offset is assigned by NewStruct.
type Field struct {
	Name   string
	Kind   Kind
	Span   int
	Offset int
}

func U8(name string) Field        { return Field{Name: name, Kind: KindU8, Span: U8Span} }
func Bool(name string) Field      { return Field{Name: name, Kind: KindBool, Span: BoolSpan} }
func U32(name string) Field       { return Field{Name: name, Kind: KindU32, Span: U32Span} }
func U64(name string) Field       { return Field{Name: name, Kind: KindU64, Span: U64Span} }
func U128(name string) Field      { return Field{Name: name, Kind: KindU128, Span: U128Span} }
func PublicKey(name string) Field { return Field{Name: name, Kind: KindPublicKey, Span: PublicKeySpan} }

// Blob declares an opaque field of span bytes, typically holding a nested Struct.
func Blob(name string, span int) Field { return Field{Name: name, Kind: KindBlob, Span: span} }

// Struct is an ordered sequence of fields laid out back to back with no
// padding. A field's offset is the sum of the spans of the fields before it.
type Struct struct {
	name   string
	fields []Field
	index  map[string]int
	span   int
}

// NewStruct lays out fields in declaration order. Layouts are declared at
// package init, so a duplicate field name or a non-positive span panics.
func NewStruct(name string, fields ...Field) *Struct {
	s := &Struct{
		name:   name,
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	offset := 0
	for i, f := range fields {
		if f.Span <= 0 {
			panic(fmt.Sprintf("layout %s: field %q has span %d", name, f.Name, f.Span))
		}
		if _, ok := s.index[f.Name]; ok {
			panic(fmt.Sprintf("layout %s: duplicate field %q", name, f.Name))
		}
		f.Offset = offset
		s.fields[i] = f
		s.index[f.Name] = i
		offset += f.Span
	}
	s.span = offset
	return s
}

func (s *Struct) Name() string { return s.name }

// Span is the total encoded size in bytes.
func (s *Struct) Span() int { return s.span }

// Fields returns the fields in declaration order.
func (s *Struct) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

func (s *Struct) Field(name string) (Field, error) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, s.name, name)
	}
	return s.fields[i], nil
}

// FieldsWithPrefix returns, in declaration order, the fields whose name starts with prefix.
func (s *Struct) FieldsWithPrefix(prefix string) []Field {
	var out []Field
	for _, f := range s.fields {
		if strings.HasPrefix(f.Name, prefix) {
			out = append(out, f)
		}
	}
	return out
}

// Alloc returns a zeroed buffer of exactly Span bytes.
func (s *Struct) Alloc() []byte {
	return make([]byte, s.span)
}

// Check verifies that buf holds at least Span bytes.
func (s *Struct) Check(buf []byte) error {
	if len(buf) < s.span {
		return fmt.Errorf("%w: %s needs %d bytes, have %d", ErrLayout, s.name, s.span, len(buf))
	}
	return nil
}

func (s *Struct) lookup(name string, kind Kind) (Field, error) {
	f, err := s.Field(name)
	if err != nil {
		return Field{}, err
	}
	if f.Kind != kind {
		return Field{}, fmt.Errorf("%w: %s.%s is %s, not %s", ErrFieldKind, s.name, name, f.Kind, kind)
	}
	return f, nil
}

func (s *Struct) wrap(name string, err error) error {
	return fmt.Errorf("%s.%s: %w", s.name, name, err)
}

func (s *Struct) U8(buf []byte, name string) (uint8, error) {
	f, err := s.lookup(name, KindU8)
	if err != nil {
		return 0, err
	}
	v, err := DecodeU8(buf, f.Offset)
	if err != nil {
		return 0, s.wrap(name, err)
	}
	return v, nil
}

func (s *Struct) Bool(buf []byte, name string) (bool, error) {
	f, err := s.lookup(name, KindBool)
	if err != nil {
		return false, err
	}
	v, err := DecodeBool(buf, f.Offset)
	if err != nil {
		return false, s.wrap(name, err)
	}
	return v, nil
}

func (s *Struct) U32(buf []byte, name string) (uint32, error) {
	f, err := s.lookup(name, KindU32)
	if err != nil {
		return 0, err
	}
	v, err := DecodeU32(buf, f.Offset)
	if err != nil {
		return 0, s.wrap(name, err)
	}
	return v, nil
}

func (s *Struct) U64(buf []byte, name string) (uint64, error) {
	f, err := s.lookup(name, KindU64)
	if err != nil {
		return 0, err
	}
	v, err := DecodeU64(buf, f.Offset)
	if err != nil {
		return 0, s.wrap(name, err)
	}
	return v, nil
}

func (s *Struct) BigU64(buf []byte, name string) (*big.Int, error) {
	f, err := s.lookup(name, KindU64)
	if err != nil {
		return nil, err
	}
	v, err := DecodeBigU64(buf, f.Offset)
	if err != nil {
		return nil, s.wrap(name, err)
	}
	return v, nil
}

func (s *Struct) U128(buf []byte, name string) (*big.Int, error) {
	f, err := s.lookup(name, KindU128)
	if err != nil {
		return nil, err
	}
	v, err := DecodeU128(buf, f.Offset)
	if err != nil {
		return nil, s.wrap(name, err)
	}
	return v, nil
}

func (s *Struct) PublicKey(buf []byte, name string) (solana.PublicKey, error) {
	f, err := s.lookup(name, KindPublicKey)
	if err != nil {
		return solana.PublicKey{}, err
	}
	v, err := DecodePublicKey(buf, f.Offset)
	if err != nil {
		return solana.PublicKey{}, s.wrap(name, err)
	}
	return v, nil
}

// Blob returns a copy of the bytes of a blob field.
func (s *Struct) Blob(buf []byte, name string) ([]byte, error) {
	f, err := s.lookup(name, KindBlob)
	if err != nil {
		return nil, err
	}
	v, err := DecodeBlob(buf, f.Offset, f.Span)
	if err != nil {
		return nil, s.wrap(name, err)
	}
	return v, nil
}

func (s *Struct) PutU8(buf []byte, name string, v uint8) error {
	f, err := s.lookup(name, KindU8)
	if err != nil {
		return err
	}
	if err := EncodeU8(buf, f.Offset, v); err != nil {
		return s.wrap(name, err)
	}
	return nil
}

func (s *Struct) PutBool(buf []byte, name string, v bool) error {
	f, err := s.lookup(name, KindBool)
	if err != nil {
		return err
	}
	if err := EncodeBool(buf, f.Offset, v); err != nil {
		return s.wrap(name, err)
	}
	return nil
}

func (s *Struct) PutU32(buf []byte, name string, v uint64) error {
	f, err := s.lookup(name, KindU32)
	if err != nil {
		return err
	}
	if err := EncodeU32(buf, f.Offset, v); err != nil {
		return s.wrap(name, err)
	}
	return nil
}

func (s *Struct) PutU64(buf []byte, name string, v uint64) error {
	f, err := s.lookup(name, KindU64)
	if err != nil {
		return err
	}
	if err := EncodeU64(buf, f.Offset, v); err != nil {
		return s.wrap(name, err)
	}
	return nil
}

func (s *Struct) PutBigU64(buf []byte, name string, v *big.Int) error {
	f, err := s.lookup(name, KindU64)
	if err != nil {
		return err
	}
	if err := EncodeBigU64(buf, f.Offset, v); err != nil {
		return s.wrap(name, err)
	}
	return nil
}

func (s *Struct) PutU128(buf []byte, name string, v *big.Int) error {
	f, err := s.lookup(name, KindU128)
	if err != nil {
		return err
	}
	if err := EncodeU128(buf, f.Offset, v); err != nil {
		return s.wrap(name, err)
	}
	return nil
}

func (s *Struct) PutPublicKey(buf []byte, name string, v solana.PublicKey) error {
	f, err := s.lookup(name, KindPublicKey)
	if err != nil {
		return err
	}
	if err := EncodePublicKey(buf, f.Offset, v); err != nil {
		return s.wrap(name, err)
	}
	return nil
}

func (s *Struct) PutBlob(buf []byte, name string, v []byte) error {
	f, err := s.lookup(name, KindBlob)
	if err != nil {
		return err
	}
	if err := EncodeBlob(buf, f.Offset, f.Span, v); err != nil {
		return s.wrap(name, err)
	}
	return nil
}
