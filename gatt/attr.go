package gatt

import (
	"github.com/pkg/errors"
	"github.com/rigado/fsci"
)

// MaxAttributeValueSize is the largest attribute value the protocol carries.
const MaxAttributeValueSize = 512

// Property is the characteristic properties bitfield.
type Property uint8

// Characteristic property flags, Core Vol 3 Part G 3.3.1.1.
const (
	CharBroadcast   Property = 0x01 // may be broadcast
	CharRead        Property = 0x02 // may be read
	CharWriteNR     Property = 0x04 // may be written to, with no reply
	CharWrite       Property = 0x08 // may be written to, with a reply
	CharNotify      Property = 0x10 // supports notifications
	CharIndicate    Property = 0x20 // supports Indications
	CharSignedWrite Property = 0x40 // supports signed write
	CharExtended    Property = 0x80 // supports extended properties
)

func (p Property) String() string {
	var s string
	for _, f := range []struct {
		p Property
		c string
	}{
		{CharBroadcast, "B"},
		{CharRead, "R"},
		{CharWriteNR, "w"},
		{CharWrite, "W"},
		{CharNotify, "N"},
		{CharIndicate, "I"},
		{CharSignedWrite, "S"},
		{CharExtended, "E"},
	} {
		if p&f.p != 0 {
			s += f.c
		}
	}
	return s
}

// Attribute is a handle, a type and a value. Descriptors are attributes.
// MaxValueLength is how many bytes the remote side may write into Value.
type Attribute struct {
	Handle         uint16
	UUID           UUID
	MaxValueLength uint16
	Value          []byte
}

// Descriptor is an attribute that belongs to a characteristic.
type Descriptor = Attribute

// Characteristic is a declaration, its value attribute and descriptors.
type Characteristic struct {
	Handle      uint16 // declaration handle
	Property    Property
	Value       Attribute
	Descriptors []Attribute
}

// ValueHandle returns the handle of the characteristic value.
func (c Characteristic) ValueHandle() uint16 {
	return c.Value.Handle
}

// UUID returns the characteristic type.
func (c Characteristic) UUID() UUID {
	return c.Value.UUID
}

// IncludedService is the handle range and type of a service included by
// another; the included service's own children are never carried inline.
type IncludedService struct {
	StartHandle uint16
	EndHandle   uint16
	UUID        UUID
}

// Service is a handle range, a type, its characteristics and the services
// it includes.
type Service struct {
	StartHandle      uint16
	EndHandle        uint16
	UUID             UUID
	Characteristics  []Characteristic
	IncludedServices []IncludedService
}

// Include returns the included-service form of s.
func (s Service) Include() IncludedService {
	return IncludedService{s.StartHandle, s.EndHandle, s.UUID}
}

// Validate checks the attribute's lengths against MaxAttributeValueSize.
func (a Attribute) Validate() error {
	if len(a.Value) > MaxAttributeValueSize {
		return errors.Wrapf(fsci.ErrValueTooLong, "handle 0x%04X: value length %d", a.Handle, len(a.Value))
	}
	if int(a.MaxValueLength) > MaxAttributeValueSize {
		return errors.Wrapf(fsci.ErrValueTooLong, "handle 0x%04X: max value length %d", a.Handle, a.MaxValueLength)
	}
	if !a.UUID.Type.Known() {
		return errors.Wrapf(fsci.ErrMalformed, "handle 0x%04X: %v", a.Handle, a.UUID.Type)
	}
	return nil
}

// Validate checks the value and every descriptor.
func (c Characteristic) Validate() error {
	if err := c.Value.Validate(); err != nil {
		return err
	}
	if len(c.Descriptors) > 0xFF {
		return errors.Wrapf(fsci.ErrMalformed, "%d descriptors", len(c.Descriptors))
	}
	for _, d := range c.Descriptors {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks every characteristic of the service.
func (s Service) Validate() error {
	if !s.UUID.Type.Known() {
		return errors.Wrapf(fsci.ErrMalformed, "service 0x%04X: %v", s.StartHandle, s.UUID.Type)
	}
	if len(s.Characteristics) > 0xFF || len(s.IncludedServices) > 0xFF {
		return errors.Wrapf(fsci.ErrMalformed, "service 0x%04X: too many children", s.StartHandle)
	}
	for _, c := range s.Characteristics {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	for _, is := range s.IncludedServices {
		if !is.UUID.Type.Known() {
			return errors.Wrapf(fsci.ErrMalformed, "included service 0x%04X: %v", is.StartHandle, is.UUID.Type)
		}
	}
	return nil
}
