package input

// sppLevels are the sample counts reachable from hotkeys, in ascending order.
var sppLevels = [...]int{1, 2, 4, 8, 16}

// CycleSPP returns the next level after spp, wrapping from 16 back to 1.
// Values that are not a level restart the cycle at 1.
func CycleSPP(spp int) int {
	for i, level := range sppLevels {
		if spp == level {
			return sppLevels[(i+1)%len(sppLevels)]
		}
	}
	return 1
}

// StepSPPUp returns the smallest level above spp, saturating at 16.
func StepSPPUp(spp int) int {
	for _, level := range sppLevels[1:] {
		if spp < level {
			return level
		}
	}
	return sppLevels[len(sppLevels)-1]
}

// StepSPPDown returns the largest level below spp, saturating at 1.
func StepSPPDown(spp int) int {
	for i := len(sppLevels) - 2; i > 0; i-- {
		if spp > sppLevels[i] {
			return sppLevels[i]
		}
	}
	return 1
}
