package pdp10

// Real KS10 opcode values (octal, per the architecture's standard
// numbering, cross-checked against original_source/pdp10/ks10_apr.c's
// "70000 APRID"/"70020 WRAPR" comments): only the subset needed to
// drive §8 S3 and a minimal program flow is implemented.
const (
	opMOVE  uint32 = 0200 // MOVE  AC,E   -- AC <- C(E)
	opMOVEI uint32 = 0201 // MOVEI AC,E   -- AC <- E (immediate, right half)
	opMOVEM uint32 = 0202 // MOVEM AC,E   -- C(E) <- AC
	opJRST  uint32 = 0254 // JRST  flavor,E
	opAPRID uint32 = 0700 // Written 70000 in the manuals; keyed here as 0700, see opcodeTable below.
	opWRAPR uint32 = 0702 // Written 70020 in the manuals; keyed here as 0702.
)

// JRST AC-field flavors (§4.5): only plain jump and HALT are implemented.
const (
	jrstJump uint32 = 0
	jrstHalt uint32 = 04
)

type handler func(c *CPU, w instrWord)

// opcodeTable keys are the 9-bit opcode field as decoded by decodeWord,
// i.e. instruction_word>>27. The AC field is not part of the key: APRID
// and WRAPR each have their own key (0700 and 0702), and every other
// AC value under those opcodes dispatches to the same handler, so the
// table stays one flat map.
var opcodeTable = map[uint32]handler{
	opMOVE:  execMOVE,
	opMOVEI: execMOVEI,
	opMOVEM: execMOVEM,
	opJRST:  execJRST,
	opAPRID: execAPRID,
	opWRAPR: execWRAPR,
}

func execMOVE(c *CPU, w instrWord) {
	ea, fault := c.effectiveAddress(w)
	if fault.IsFault() {
		c.IRQ.APRRequest[c.NoMemoryLevel] = true
		return
	}
	v, fault := c.Mem.ReadWord36(ea, c.mode(false, false))
	if fault.IsFault() {
		c.IRQ.APRRequest[c.NoMemoryLevel] = true
		return
	}
	c.AC[w.AC] = v
}

func execMOVEI(c *CPU, w instrWord) {
	ea, fault := c.effectiveAddress(w)
	if fault.IsFault() {
		c.IRQ.APRRequest[c.NoMemoryLevel] = true
		return
	}
	c.AC[w.AC] = uint64(ea)
}

func execMOVEM(c *CPU, w instrWord) {
	ea, fault := c.effectiveAddress(w)
	if fault.IsFault() {
		c.IRQ.APRRequest[c.NoMemoryLevel] = true
		return
	}
	if fault := c.Mem.WriteWord36(ea, c.AC[w.AC], c.mode(true, false)); fault.IsFault() {
		c.IRQ.APRRequest[c.NoMemoryLevel] = true
	}
}

func execJRST(c *CPU, w instrWord) {
	ea, fault := c.effectiveAddress(w)
	if fault.IsFault() {
		c.IRQ.APRRequest[c.NoMemoryLevel] = true
		return
	}
	switch w.AC {
	case jrstHalt:
		c.Halted = true
	case jrstJump:
		c.PC = ea
	default:
		c.PC = ea
	}
}

// execAPRID implements opcode 70000 (§8 S3): store the processor
// identification word at the effective address, combining microcode
// options/version, hardware options, and serial number exactly as
// original_source/pdp10/ks10_apr.c's p10_ksOpcode_APRID builds BR.
func execAPRID(c *CPU, w instrWord) {
	ea, fault := c.effectiveAddress(w)
	if fault.IsFault() {
		c.IRQ.APRRequest[c.NoMemoryLevel] = true
		return
	}
	id := aprID(c)
	if fault := c.Mem.WriteWord36(ea, id, c.mode(true, false)); fault.IsFault() {
		c.IRQ.APRRequest[c.NoMemoryLevel] = true
	}
}

// KS10 APRID field constants (§8 S3), grounded on
// original_source/src/pdp10/ks10.h's APRID_M_*/APRID_V_* and
// KS10_MC_OPTS/KS10_MC_VER/KS10_HW_OPTS defines.
const (
	ks10MCOpts  uint64 = 0x600 // KS10_MC_KLP|KS10_MC_NCU, already shifted into its own field width.
	ks10MCVer   uint64 = 0x130
	ks10HWOpts  uint64 = 0
	aprShiftOpt        = 27
	aprShiftVer        = 18
	aprShiftHW         = 15

	// KS10SerialNumber is the default processor serial number (§8 S3).
	KS10SerialNumber uint32 = 4096
)

func aprID(c *CPU) uint64 {
	return ks10MCOpts<<aprShiftOpt | ks10MCVer<<aprShiftVer | ks10HWOpts<<aprShiftHW | uint64(c.Serial)
}

// execWRAPR implements opcode 70020: set/clear/enable/disable one or
// more APR system flags and the PI level they're wired to, matching
// original_source/pdp10/ks10_apr.c's p10_ksOpcode_WRAPR field layout
// (flags in the low bits, ENABLE/DISABLE/SET/CLEAR as separate high
// bits of the effective address).
const (
	aprFlagsMask uint32 = 0177
	aprLevelMask uint32 = 07
	aprEnable    uint32 = 1 << 9
	aprDisable   uint32 = 1 << 10
	aprSet       uint32 = 1 << 11
	aprClear     uint32 = 1 << 12
)

func execWRAPR(c *CPU, w instrWord) {
	ea, fault := c.effectiveAddress(w)
	if fault.IsFault() {
		c.IRQ.APRRequest[c.NoMemoryLevel] = true
		return
	}
	c.NoMemoryLevel = int(ea & aprLevelMask)
	if c.NoMemoryLevel == 0 {
		c.NoMemoryLevel = 1
	}
	flags := ea & aprFlagsMask
	switch {
	case ea&aprEnable != 0:
		c.IRQ.Enabled[c.NoMemoryLevel] = c.IRQ.Enabled[c.NoMemoryLevel] || flags != 0
	case ea&aprDisable != 0:
		if flags != 0 {
			c.IRQ.Enabled[c.NoMemoryLevel] = false
		}
	case ea&aprSet != 0:
		if flags != 0 {
			c.IRQ.APRRequest[c.NoMemoryLevel] = true
		}
	case ea&aprClear != 0:
		if flags != 0 {
			c.IRQ.APRRequest[c.NoMemoryLevel] = false
		}
	}
}
