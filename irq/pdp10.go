package irq

// PDP-10 seven-level priority interrupt (§4.4 PDP-10). Each level 1-7
// has an APR-request bit and an IO-request summary bit; WRAPR/WRPI
// manipulate enables, program requests, and in-progress bits atomically
// through this controller rather than through scattered globals, the
// same generalization irq/vax.go applies to the VAX SISR.
type PDP10Controller struct {
	Enabled    [8]bool // PI system enable per level (index 1-7; 0 unused).
	APRRequest [8]bool // APR (processor-internal) request pending per level.
	IORequest  [8]bool // Device IO request pending per level.
	InProgress [8]bool // Level currently being serviced (blocks lower levels).
	PIOn       bool    // Master PI-system enable (WRPI bit 0).
}

// EPT offsets for the per-level instruction-word pairs (§6): two words
// per level starting at 0x040.
const (
	EPTPIBase    uint32 = 0x040
	EPTUBAVector uint32 = 0x100
	EPTExecTrap  uint32 = 0x420
	EPTSection0  uint32 = 0x540
)

// Evaluate returns the highest PDP-10 PI level (1=lowest priority,
// 7=highest) with a pending APR or IO request that is enabled and not
// already blocked by an in-progress higher-or-equal level.
func (c *PDP10Controller) Evaluate() (level int, pending bool) {
	if !c.PIOn {
		return 0, false
	}
	for l := 7; l >= 1; l-- {
		if !c.Enabled[l] {
			continue
		}
		if c.InProgress[l] {
			// A level already in service blocks itself and every
			// lower level until dismissed (REI/JEN).
			return 0, false
		}
		if c.APRRequest[l] || c.IORequest[l] {
			return l, true
		}
	}
	return 0, false
}

// Dismiss clears the in-progress bit for `level`, re-enabling lower
// levels, matching the shared "handler runs to its dismissal
// instruction" contract of §4.4.
func (c *PDP10Controller) Dismiss(level int) {
	c.InProgress[level] = false
}

// Enter marks `level` in progress, matching XPCW/JSR context-save entry.
func (c *PDP10Controller) Enter(level int) {
	c.InProgress[level] = true
}

