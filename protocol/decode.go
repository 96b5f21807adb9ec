package protocol

import (
	"encoding/binary"
	"math"
	"strconv"
	"unicode/utf16"
)

// DecodeValue reads one column's wire value given its type tag, per the
// layouts in SPEC_FULL.md §4.2. Callers are responsible for reading the
// preceding null/value/error flag byte (§4.5) before invoking this.
func DecodeValue(br *ByteReader, tag TypeTag) (Value, error) {
	switch tag {
	case VKBoolean:
		n, err := readU16(br)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(n != 0), nil

	case VKByte, VKWord:
		n, err := readU16(br)
		if err != nil {
			return Value{}, err
		}
		return IntValue(int32(n)), nil

	case VKLong:
		n, err := readU32(br)
		if err != nil {
			return Value{}, err
		}
		return IntValue(int32(n)), nil

	case VKLong8, VKDuration:
		n, err := readU64(br)
		if err != nil {
			return Value{}, err
		}
		return LongValue(int64(n)), nil

	case VKReal:
		bits, err := readU64(br)
		if err != nil {
			return Value{}, err
		}
		return DoubleValue(math.Float64frombits(bits)), nil

	case VKFloat:
		return decodeFloat(br)

	case VKString:
		return decodeString(br)

	case VKBlob, VKImage:
		return decodeBlob(br)

	case VKTimestamp, VKTime:
		return decodeTimestamp(br)

	default:
		return Value{}, TypeNotSupportedError(tag)
	}
}

func readU16(br *ByteReader) (uint16, error) {
	b, err := br.ReadExact(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func readU32(br *ByteReader) (uint32, error) {
	b, err := br.ReadExact(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func readU64(br *ByteReader) (uint64, error) {
	b, err := br.ReadExact(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// decodeFloat decodes the server's non-standard variable-precision float:
// a u32 exponent, a 1-byte sign, a u32 mantissa digit-run length, then that
// many ASCII digit bytes parsed as a base-10 integer mantissa. Unverified
// against a live server; see DESIGN.md, Open Question decision 2.
func decodeFloat(br *ByteReader) (Value, error) {
	exp, err := readU32(br)
	if err != nil {
		return Value{}, err
	}
	signByte, err := br.ReadByte()
	if err != nil {
		return Value{}, err
	}
	digitLen, err := readU32(br)
	if err != nil {
		return Value{}, err
	}
	digits, err := br.ReadExact(int(digitLen))
	if err != nil {
		return Value{}, err
	}
	mantissa, err := strconv.ParseUint(string(digits), 10, 64)
	if err != nil {
		return Value{}, DecodeErr("malformed VK_FLOAT mantissa", map[string]interface{}{
			"digits": string(digits),
			"cause":  err.Error(),
		})
	}

	sign := 1.0
	if signByte != 0 {
		sign = -1.0
	}
	value := sign * (1 + float64(mantissa)*math.Pow(2, -23)) * math.Pow(2, float64(exp)-127)
	return DoubleValue(value), nil
}

// decodeString decodes a VK_STRING: a u32 raw length prefix followed by the
// effective length's worth of UTF-16LE code units. The effective length is
// 2^32 - raw_len; raw_len == 0 is the boundary case meaning the empty string
// (§4.2, §8 invariant 7).
func decodeString(br *ByteReader) (Value, error) {
	rawLen, err := readU32(br)
	if err != nil {
		return Value{}, err
	}
	if rawLen == 0 {
		return StringValue(""), nil
	}

	effectiveLen := -rawLen // uint32 wraparound: 0 - rawLen == 2^32 - rawLen
	raw, err := br.ReadExact(int(effectiveLen) * 2)
	if err != nil {
		return Value{}, err
	}

	units := make([]uint16, effectiveLen)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(raw[i*2 : i*2+2])
	}
	return StringValue(string(utf16.Decode(units))), nil
}

func decodeBlob(br *ByteReader) (Value, error) {
	length, err := readU32(br)
	if err != nil {
		return Value{}, err
	}
	data, err := br.ReadExact(int(length))
	if err != nil {
		return Value{}, err
	}
	return BlobValue(data), nil
}

// decodeTimestamp decodes a VK_TIMESTAMP/VK_TIME: u16 year, u8 month, u8 day,
// u32 milliseconds-of-day, rendered as "DD.MM.YYYY" or, when a time-of-day is
// present, "DD.MM.YYYY HH:MM:SS" (§4.2, §8 scenario S5).
func decodeTimestamp(br *ByteReader) (Value, error) {
	year, err := readU16(br)
	if err != nil {
		return Value{}, err
	}
	month, err := br.ReadByte()
	if err != nil {
		return Value{}, err
	}
	day, err := br.ReadByte()
	if err != nil {
		return Value{}, err
	}
	millis, err := readU32(br)
	if err != nil {
		return Value{}, err
	}

	date := formatDate(int(day), int(month), int(year))
	if millis == 0 {
		return DateTimeValue(date), nil
	}

	totalSeconds := int(millis) / 1000
	hours := (totalSeconds / 3600) % 24
	minutes := (totalSeconds / 60) % 60
	seconds := totalSeconds % 60
	return DateTimeValue(date + " " + formatClock(hours, minutes, seconds)), nil
}

func formatDate(day, month, year int) string {
	return pad2(day) + "." + pad2(month) + "." + pad4(year)
}

func formatClock(h, m, s int) string {
	return pad2(h) + ":" + pad2(m) + ":" + pad2(s)
}

func pad2(n int) string {
	s := strconv.Itoa(n)
	if len(s) < 2 {
		return "0" + s
	}
	return s
}

func pad4(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}
