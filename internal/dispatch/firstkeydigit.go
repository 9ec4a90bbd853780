package dispatch

// FirstKeyDigit is stateless: it reads the character immediately after
// the command's first space -- the first byte of the key -- and routes
// on (byte-'0') mod peers, unconditionally, same as the original's
// first_key_digit_choice. A non-digit byte still folds into a valid
// index in [0, peers) (a negative remainder is shifted up by peers), it
// just doesn't land where a decimal digit would; no request maps to
// peer 0 more often than the arithmetic says.
type FirstKeyDigit struct{}

func NewFirstKeyDigit() *FirstKeyDigit { return &FirstKeyDigit{} }

func (p *FirstKeyDigit) Next(peers int, req []byte) int {
	if peers <= 0 {
		return 0
	}
	for i, b := range req {
		if b == ' ' && i+1 < len(req) {
			c := req[i+1]
			idx := (int(c) - int('0')) % peers
			if idx < 0 {
				idx += peers
			}
			return idx
		}
	}
	return 0
}

func (p *FirstKeyDigit) String() string { return "first-key-digit" }
