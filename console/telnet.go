/*
 * TS10 - console telnet IAC filtering.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package console

// Telnet protocol bytes the console's IAC filter recognizes. The VAX/
// PDP-10 console is a plain byte stream (unlike the teacher's 3270/ASCII
// terminal, which negotiates terminal type and line mode), so this
// filter only needs to strip option negotiation, not participate in it:
// adapted from telnet.go's state machine, trimmed to recognition only.
const (
	iac  byte = 255
	will byte = 251
	wont byte = 252
	do   byte = 253
	dont byte = 254
	sb   byte = 250
	se   byte = 240
)

// iacFilter consumes a telnet byte stream across calls, stripping IAC
// command sequences (including subnegotiation blocks) so the bytes
// reaching RXDB are plain terminal data, mirroring telnet.go's
// tnStateData/tnStateIAC/tnStateSB state progression.
type iacFilter struct {
	state int
}

const (
	stateData = iota
	stateIAC
	stateOption // WILL/WONT/DO/DONT seen, one option byte to consume
	stateSB
	stateSBIAC
)

// Filter processes one incoming byte, returning the data byte to deliver
// to RXDB (if any) and whether one was produced.
func (f *iacFilter) Filter(b byte) (byte, bool) {
	switch f.state {
	case stateData:
		if b == iac {
			f.state = stateIAC
			return 0, false
		}
		return b, true
	case stateIAC:
		switch b {
		case will, wont, do, dont:
			f.state = stateOption
		case sb:
			f.state = stateSB
		case iac:
			f.state = stateData
			return iac, true // Escaped 0xFF data byte.
		default:
			f.state = stateData
		}
		return 0, false
	case stateOption:
		f.state = stateData
		return 0, false
	case stateSB:
		if b == iac {
			f.state = stateSBIAC
		}
		return 0, false
	case stateSBIAC:
		if b == se {
			f.state = stateData
		} else {
			f.state = stateSB
		}
		return 0, false
	default:
		f.state = stateData
		return 0, false
	}
}
