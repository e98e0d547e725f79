package interp

import (
	"fmt"
	"strconv"
)

type valueTag int

const (
	tagUnit valueTag = iota
	tagInt
	tagFloat
	tagStr
	tagBool
	tagPending
)

type value struct {
	tag valueTag
	i   int64
	f   float64
	s   string
	b   bool
	def *deferredEval
}

func unitValue() value           { return value{tag: tagUnit} }
func intValue(i int64) value     { return value{tag: tagInt, i: i} }
func floatValue(f float64) value { return value{tag: tagFloat, f: f} }
func strValue(s string) value    { return value{tag: tagStr, s: s} }
func boolValue(b bool) value     { return value{tag: tagBool, b: b} }
func pendingValue() value        { return value{tag: tagPending} }

func parseIntValue(text string) value {
	i, _ := strconv.ParseInt(text, 10, 64)
	return intValue(i)
}

func parseFloatValue(text string) value {
	f, _ := strconv.ParseFloat(text, 64)
	return floatValue(f)
}

// typeName returns the language-level type of v.
func (v value) typeName() string {
	switch v.tag {
	case tagInt:
		return "Int"
	case tagFloat:
		return "Double"
	case tagStr:
		return "String"
	case tagBool:
		return "Boolean"
	case tagPending:
		return "Pending"
	default:
		return "Unit"
	}
}

// render returns the display form of v.
func (v value) render() string {
	switch v.tag {
	case tagInt:
		return strconv.FormatInt(v.i, 10)
	case tagFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case tagStr:
		return strconv.Quote(v.s)
	case tagBool:
		return strconv.FormatBool(v.b)
	case tagPending:
		return "<pending>"
	default:
		return "()"
	}
}

// text returns the raw textual form of v, for print output.
func (v value) text() string {
	if v.tag == tagStr {
		return v.s
	}
	return v.render()
}

func (v value) String() string {
	return fmt.Sprintf("%s: %s", v.render(), v.typeName())
}
