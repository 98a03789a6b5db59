package hotkey

// keycodeNames maps Linux input keycodes to the normalized key tokens
// the chord syntax can name. Left and right modifiers collapse into one
// token.
var keycodeNames = map[uint16]Key{
	// Modifiers
	29:  "ctrl", // KEY_LEFTCTRL
	97:  "ctrl", // KEY_RIGHTCTRL
	56:  "alt",  // KEY_LEFTALT
	100: "alt",  // KEY_RIGHTALT
	42:  "shift",
	54:  "shift",
	125: "cmd", // KEY_LEFTMETA
	126: "cmd", // KEY_RIGHTMETA

	// Specials
	1:  "esc",
	15: "tab",
	28: "enter",
	57: "space",

	// Digit row
	2: "1", 3: "2", 4: "3", 5: "4", 6: "5",
	7: "6", 8: "7", 9: "8", 10: "9", 11: "0",

	// Letters
	16: "q", 17: "w", 18: "e", 19: "r", 20: "t",
	21: "y", 22: "u", 23: "i", 24: "o", 25: "p",
	30: "a", 31: "s", 32: "d", 33: "f", 34: "g",
	35: "h", 36: "j", 37: "k", 38: "l",
	44: "z", 45: "x", 46: "c", 47: "v", 48: "b",
	49: "n", 50: "m",

	// Function keys
	59: "f1", 60: "f2", 61: "f3", 62: "f4", 63: "f5",
	64: "f6", 65: "f7", 66: "f8", 67: "f9", 68: "f10",
	87: "f11", 88: "f12",
}
