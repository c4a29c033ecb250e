package core

type Button uint8

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Modifiers is a bit set of the modifier keys held during an event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModSuper
)

func (m Modifiers) Shift() bool   { return m&ModShift != 0 }
func (m Modifiers) Control() bool { return m&ModControl != 0 }
func (m Modifiers) Alt() bool     { return m&ModAlt != 0 }

// Key code definitions, using the virtual key numbering.
type KeyCode uint16

const (
	KEY_UNKNOWN   KeyCode = 0x00
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_SHIFT     KeyCode = 0x10
	KEY_CONTROL   KeyCode = 0x11
	KEY_PAUSE     KeyCode = 0x13
	KEY_CAPITAL   KeyCode = 0x14
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_PRIOR     KeyCode = 0x21
	KEY_NEXT      KeyCode = 0x22
	KEY_END       KeyCode = 0x23
	KEY_HOME      KeyCode = 0x24
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_INSERT    KeyCode = 0x2D
	KEY_DELETE    KeyCode = 0x2E
	KEY_0         KeyCode = 0x30
	KEY_A         KeyCode = 0x41
	KEY_Z         KeyCode = 0x5A
	KEY_NUMPAD0   KeyCode = 0x60
	KEY_F1        KeyCode = 0x70
	KEY_F12       KeyCode = 0x7B
	KEY_MAX_KEYS  KeyCode = 0xFF
)

// KeyFromASCII maps digits and latin letters to their key codes. Anything
// else yields KEY_UNKNOWN.
func KeyFromASCII(r rune) KeyCode {
	switch {
	case r >= '0' && r <= '9':
		return KEY_0 + KeyCode(r-'0')
	case r >= 'A' && r <= 'Z':
		return KEY_A + KeyCode(r-'A')
	case r >= 'a' && r <= 'z':
		return KEY_A + KeyCode(r-'a')
	}
	return KEY_UNKNOWN
}
