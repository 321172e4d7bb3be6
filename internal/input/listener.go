// Package input turns raw terminal bytes into control messages.
package input

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/randytsao24/heisenberg/internal/state"
	"go.uber.org/zap"
)

const (
	keyCtrlC = 0x03
	keyTab   = '\t'
	keyLF    = '\n'
	keyCR    = '\r'
	keyEsc   = 0x1b
)

// escTimeout is how long a trailing Esc waits for the rest of a sequence
// before it counts as the Esc key.
const escTimeout = 50 * time.Millisecond

// Listener reads a terminal in raw mode and sends a Message for each
// recognized key or click. Everything else is ignored.
type Listener struct {
	r   io.Reader
	log *zap.SugaredLogger
}

// NewListener creates a listener over r, usually os.Stdin
func NewListener(r io.Reader, log *zap.SugaredLogger) *Listener {
	return &Listener{r: r, log: log}
}

type chunk struct {
	data []byte
	err  error
}

// Run reads until the input ends or out is closed. When the input ends or
// fails, a single Quit is sent.
func (l *Listener) Run(out state.Sender) {
	done := make(chan struct{})
	defer close(done)
	chunks := l.read(done)

	var pending []byte
	var escTimer <-chan time.Time

	for {
		select {
		case c := <-chunks:
			if len(c.data) > 0 {
				var msgs []state.Message
				msgs, pending = decode(append(pending, c.data...))
				for _, msg := range msgs {
					if !out.Send(msg) {
						return
					}
				}
			}
			if c.err != nil {
				if errors.Is(c.err, io.EOF) {
					l.log.Infow("input closed")
				} else {
					l.log.Warnw("input read failed", "error", c.err)
				}
				out.Send(state.Quit{})
				return
			}

			escTimer = nil
			if len(pending) == 1 && pending[0] == keyEsc {
				escTimer = time.After(escTimeout)
			}

		case <-escTimer:
			escTimer = nil
			pending = nil
			if !out.Send(state.Quit{}) {
				return
			}
		}
	}
}

// read forwards chunks from the reader until a read fails or done is closed
func (l *Listener) read(done <-chan struct{}) <-chan chunk {
	chunks := make(chan chunk)
	go func() {
		for {
			buf := make([]byte, 256)
			n, err := l.r.Read(buf)
			select {
			case chunks <- chunk{data: buf[:n], err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return chunks
}

// decode returns the messages in data and any trailing bytes that begin an
// escape sequence which has not been fully read yet. A trailing Esc is
// returned as pending too; Run decides whether it was the Esc key.
func decode(data []byte) ([]state.Message, []byte) {
	var msgs []state.Message

	for len(data) > 0 {
		b := data[0]
		if b != keyEsc {
			if msg, ok := keyMessage(b); ok {
				msgs = append(msgs, msg)
			}
			data = data[1:]
			continue
		}

		if len(data) == 1 {
			return msgs, []byte{keyEsc}
		}

		switch data[1] {
		case '[':
			seq, n, complete := csi(data)
			if !complete {
				return msgs, append([]byte(nil), data...)
			}
			if isLeftRelease(seq) {
				msgs = append(msgs, state.AdvanceMode{})
			}
			data = data[n:]
		case 'O':
			// SS3 function keys are three bytes
			if len(data) < 3 {
				return msgs, append([]byte(nil), data...)
			}
			data = data[3:]
		default:
			// Alt+key
			data = data[2:]
		}
	}

	return msgs, nil
}

func keyMessage(b byte) (state.Message, bool) {
	switch b {
	case 'q', 'Q', keyCtrlC:
		return state.Quit{}, true
	case ' ', keyCR, keyLF, keyTab, 'n':
		return state.AdvanceMode{}, true
	case 'w':
		return state.SwitchMode{Mode: state.Weather}, true
	case 't':
		return state.SwitchMode{Mode: state.Transit}, true
	default:
		return nil, false
	}
}

// csi returns the CSI sequence at the start of data (after "ESC ["), its
// total length, and whether the final byte has been read.
func csi(data []byte) ([]byte, int, bool) {
	for i := 2; i < len(data); i++ {
		if data[i] >= 0x40 && data[i] <= 0x7e {
			return data[2 : i+1], i + 1, true
		}
	}
	return nil, 0, false
}

// isLeftRelease reports whether seq is an SGR mouse report ("<b;x;ym") for
// the left button being released.
func isLeftRelease(seq []byte) bool {
	if len(seq) < 2 || seq[0] != '<' || seq[len(seq)-1] != 'm' {
		return false
	}
	fields := bytes.Split(seq[1:len(seq)-1], []byte{';'})
	if len(fields) != 3 {
		return false
	}
	button, err := strconv.Atoi(string(fields[0]))
	if err != nil {
		return false
	}
	// Low bits select the button; 32 is motion, 64 is the wheel
	return button&0b11 == 0 && button&(32|64) == 0
}
