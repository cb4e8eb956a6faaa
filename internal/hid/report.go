// Package hid encodes mouse reports and delivers them to the host through
// the USB gadget HID function.
package hid

import (
	"io"

	"github.com/sweeney/stick-mouse/internal/logic"
)

// ReportSize is the length of an encoded mouse report.
const ReportSize = 5

// Encode packs r into the 5-byte report matching ReportDescriptor.
//
// Report layout (5 bytes):
//
//	Byte 0: Button bitfield (bit 0=Left, 1=Right, 2=Middle, 3=Back, 4=Forward, bits 5-7=padding)
//	Byte 1: DX (int8)
//	Byte 2: DY (int8)
//	Byte 3: Wheel (int8)
//	Byte 4: Pan (int8)
func Encode(r logic.Report) []byte {
	return []byte{
		r.Buttons & 0x1F,
		byte(r.DX),
		byte(r.DY),
		byte(r.Wheel),
		byte(r.Pan),
	}
}

// Decode unpacks a 5-byte report.
func Decode(b []byte) (logic.Report, error) {
	if len(b) < ReportSize {
		return logic.Report{}, io.ErrUnexpectedEOF
	}
	return logic.Report{
		Buttons: b[0],
		DX:      int8(b[1]),
		DY:      int8(b[2]),
		Wheel:   int8(b[3]),
		Pan:     int8(b[4]),
	}, nil
}

// ReportDescriptor describes a 5-button boot-compatible mouse with vertical
// wheel and horizontal pan. Written to the gadget's configfs report_desc.
var ReportDescriptor = []byte{
	0x05, 0x01, // Usage Page (Generic Desktop)
	0x09, 0x02, // Usage (Mouse)
	0xA1, 0x01, // Collection (Application)
	0x09, 0x01, //   Usage (Pointer)
	0xA1, 0x00, //   Collection (Physical)
	0x05, 0x09, //     Usage Page (Button)
	0x19, 0x01, //     Usage Minimum (Button 1)
	0x29, 0x05, //     Usage Maximum (Button 5)
	0x15, 0x00, //     Logical Minimum (0)
	0x25, 0x01, //     Logical Maximum (1)
	0x95, 0x05, //     Report Count (5)
	0x75, 0x01, //     Report Size (1)
	0x81, 0x02, //     Input (Data, Variable, Absolute)
	0x95, 0x01, //     Report Count (1)
	0x75, 0x03, //     Report Size (3)
	0x81, 0x01, //     Input - padding
	0x05, 0x01, //     Usage Page (Generic Desktop)
	0x09, 0x30, //     Usage (X)
	0x09, 0x31, //     Usage (Y)
	0x09, 0x38, //     Usage (Wheel)
	0x15, 0x81, //     Logical Minimum (-127)
	0x25, 0x7F, //     Logical Maximum (127)
	0x75, 0x08, //     Report Size (8)
	0x95, 0x03, //     Report Count (3)
	0x81, 0x06, //     Input (Data, Variable, Relative)
	0x05, 0x0C, //     Usage Page (Consumer)
	0x0A, 0x38, 0x02, // Usage (AC Pan)
	0x15, 0x81, //     Logical Minimum (-127)
	0x25, 0x7F, //     Logical Maximum (127)
	0x75, 0x08, //     Report Size (8)
	0x95, 0x01, //     Report Count (1)
	0x81, 0x06, //     Input (Data, Variable, Relative)
	0xC0, //   End Collection
	0xC0, // End Collection
}
