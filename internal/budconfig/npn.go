package budconfig

import "encoding/json"

// errNPNNonString is a sentinel wrapped by NPNList.UnmarshalJSON so
// Load can translate a JSON-type mismatch in an npn array into the
// precise ErrNPNNonString kind spec §7 names, rather than a generic
// encoding/json type error.
type errNPNNonString struct{ value json.RawMessage }

func (e *errNPNNonString) Error() string {
	return "budconfig: npn array element is not a string: " + string(e.value)
}

// NPNList is a JSON array that must contain only strings; anything
// else fails with errNPNNonString instead of the library's generic
// *json.UnmarshalTypeError, so Load can report kNpnNonString.
type NPNList []string

func (n *NPNList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, len(raw))
	for i, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			return &errNPNNonString{value: r}
		}
		out[i] = s
	}
	*n = out
	return nil
}
