package irq

import "testing"

// §8 S4: software interrupt at level 4 evaluates to SCB vector 0x90.
func TestSoftwareVectorLevel4(t *testing.T) {
	if v := SoftwareVector(4); v != 0x90 {
		t.Errorf("software vector(4) got %#x want %#x", v, 0x90)
	}
}

func TestEvaluateSoftwareAboveCurrentIPL(t *testing.T) {
	var c Controller
	c.RaiseSoftware(4)
	tir := c.Evaluate(0)
	if tir.Kind != KindInterrupt || tir.Level != 4 || tir.Vector != 0x90 {
		t.Errorf("got %+v want interrupt level 4 vector 0x90", tir)
	}
}

func TestEvaluateMaskedByCurrentIPL(t *testing.T) {
	var c Controller
	c.RaiseSoftware(4)
	tir := c.Evaluate(4) // current IPL already at 4: not strictly below
	if tir.Pending() {
		t.Errorf("interrupt at or below current IPL should not be pending: %+v", tir)
	}
}

func TestTrapDrainsBeforeInterrupt(t *testing.T) {
	var c Controller
	c.RaiseSoftware(4)
	c.Trap = TrapIntegerOverflow
	c.TrapArg = 1
	tir := c.Evaluate(0)
	if tir.Kind != KindTrap || tir.Vector != VecArith {
		t.Errorf("trap should drain first: %+v", tir)
	}
}

func TestHardwareOutranksSoftware(t *testing.T) {
	var c Controller
	c.RaiseSoftware(15)
	c.RaiseHardware(20, 0x200)
	tir := c.Evaluate(0)
	if tir.Level != 20 || tir.Vector != 0x200 {
		t.Errorf("hardware IPL should win: %+v", tir)
	}
}

func TestAckSoftwareClearsBit(t *testing.T) {
	var c Controller
	c.RaiseSoftware(4)
	c.AckSoftware(4)
	if c.SISR != 0 {
		t.Errorf("SISR got %#x want 0 after ack", c.SISR)
	}
}

func TestPDP10EvaluateEnabledRequest(t *testing.T) {
	var c PDP10Controller
	c.PIOn = true
	c.Enabled[3] = true
	c.IORequest[3] = true
	level, pending := c.Evaluate()
	if !pending || level != 3 {
		t.Errorf("got level=%d pending=%v want 3 true", level, pending)
	}
}

func TestPDP10InProgressBlocksLowerLevels(t *testing.T) {
	var c PDP10Controller
	c.PIOn = true
	c.Enabled[5] = true
	c.Enabled[2] = true
	c.IORequest[2] = true
	c.Enter(5)
	_, pending := c.Evaluate()
	if pending {
		t.Errorf("in-progress higher level should block lower-level delivery")
	}
	c.Dismiss(5)
	level, pending := c.Evaluate()
	if !pending || level != 2 {
		t.Errorf("after dismiss got level=%d pending=%v want 2 true", level, pending)
	}
}
