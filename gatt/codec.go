package gatt

import (
	"github.com/pkg/errors"
	"github.com/rigado/fsci"
	"github.com/rigado/fsci/codec"
)

// Wire layouts:
//
//	Attribute:       handle u16, uuid type u8, uuid, value length u16,
//	                 max value length u16, value
//	Characteristic:  declaration handle u16, properties u8, Attribute,
//	                 descriptor count u8, Attribute...
//	IncludedService: start u16, end u16, uuid type u8, uuid
//	Service:         start u16, end u16, uuid type u8, uuid,
//	                 characteristic count u8, Characteristic...,
//	                 included count u8, IncludedService...

func (a Attribute) Size() int {
	return 2 + 1 + a.UUID.Len() + 2 + 2 + len(a.Value)
}

func (a Attribute) Put(w *codec.Writer) {
	w.U16(a.Handle)
	w.U8(uint8(a.UUID.Type))
	w.UUID(a.UUID.Type, a.UUID.Bytes)
	w.U16(uint16(len(a.Value)))
	w.U16(a.MaxValueLength)
	w.Array(a.Value)
}

func (c Characteristic) Size() int {
	n := 2 + 1 + c.Value.Size() + 1
	for _, d := range c.Descriptors {
		n += d.Size()
	}
	return n
}

func (c Characteristic) Put(w *codec.Writer) {
	w.U16(c.Handle)
	w.U8(uint8(c.Property))
	c.Value.Put(w)
	codec.Slice8(c.Descriptors, attributeField).Put(w)
}

func (s IncludedService) Size() int {
	return 2 + 2 + 1 + s.UUID.Len()
}

func (s IncludedService) Put(w *codec.Writer) {
	w.U16(s.StartHandle)
	w.U16(s.EndHandle)
	s.UUID.Field().Put(w)
}

func (s Service) Size() int {
	n := 2 + 2 + 1 + s.UUID.Len() + 1 + 1
	for _, c := range s.Characteristics {
		n += c.Size()
	}
	for _, is := range s.IncludedServices {
		n += is.Size()
	}
	return n
}

func (s Service) Put(w *codec.Writer) {
	w.U16(s.StartHandle)
	w.U16(s.EndHandle)
	s.UUID.Field().Put(w)
	codec.Slice8(s.Characteristics, characteristicField).Put(w)
	codec.Slice8(s.IncludedServices, includedField).Put(w)
}

func attributeField(a Attribute) codec.Field           { return a }
func characteristicField(c Characteristic) codec.Field { return c }
func includedField(s IncludedService) codec.Field      { return s }
func serviceField(s Service) codec.Field               { return s }
func descriptorsField(dd []Attribute) codec.Field      { return codec.Slice8(dd, attributeField) }

// Services is a u8 count followed by every service.
func Services(ss []Service) codec.Field {
	return codec.Slice8(ss, serviceField)
}

// Characteristics is a u8 count followed by every characteristic.
func Characteristics(cc []Characteristic) codec.Field {
	return codec.Slice8(cc, characteristicField)
}

// Descriptors is a u8 count followed by every descriptor.
func Descriptors(dd []Attribute) codec.Field {
	return descriptorsField(dd)
}

// Encode returns the wire form of a single entity.
func Encode(f codec.Field) []byte {
	return codec.Marshal(f)
}

// ReadAttribute decodes an Attribute, rejecting lengths above
// MaxAttributeValueSize before the value is copied.
func ReadAttribute(r *codec.Reader) Attribute {
	var a Attribute
	a.Handle = r.U16()
	a.UUID = ReadUUID(r)
	n := int(r.U16())
	a.MaxValueLength = r.U16()
	if r.Err() != nil {
		return Attribute{}
	}
	if n > MaxAttributeValueSize || int(a.MaxValueLength) > MaxAttributeValueSize {
		r.Fail(errors.Wrapf(fsci.ErrValueTooLong, "handle 0x%04X: value length %d, max %d", a.Handle, n, a.MaxValueLength))
		return Attribute{}
	}
	a.Value = r.Array(n)
	return a
}

// ReadCharacteristic decodes a Characteristic.
func ReadCharacteristic(r *codec.Reader) Characteristic {
	var c Characteristic
	c.Handle = r.U16()
	c.Property = Property(r.U8())
	c.Value = ReadAttribute(r)
	c.Descriptors = codec.Read8(r, ReadAttribute)
	return c
}

// ReadIncludedService decodes an IncludedService.
func ReadIncludedService(r *codec.Reader) IncludedService {
	var s IncludedService
	s.StartHandle = r.U16()
	s.EndHandle = r.U16()
	s.UUID = ReadUUID(r)
	return s
}

// ReadService decodes a Service.
func ReadService(r *codec.Reader) Service {
	var s Service
	s.StartHandle = r.U16()
	s.EndHandle = r.U16()
	s.UUID = ReadUUID(r)
	s.Characteristics = codec.Read8(r, ReadCharacteristic)
	s.IncludedServices = codec.Read8(r, ReadIncludedService)
	return s
}

// ReadServices decodes a u8 count and that many services.
func ReadServices(r *codec.Reader) []Service {
	return codec.Read8(r, ReadService)
}

// ReadCharacteristics decodes a u8 count and that many characteristics.
func ReadCharacteristics(r *codec.Reader) []Characteristic {
	return codec.Read8(r, ReadCharacteristic)
}

// ReadDescriptors decodes a u8 count and that many descriptors.
func ReadDescriptors(r *codec.Reader) []Attribute {
	return codec.Read8(r, ReadAttribute)
}

// Decode decodes exactly one entity from b with dec.
func Decode[T any](b []byte, dec func(*codec.Reader) T) (T, error) {
	r := codec.NewReader(b)
	v := dec(r)
	if err := r.Finish(); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
