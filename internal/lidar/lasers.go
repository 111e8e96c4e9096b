package lidar

// buildLaserAngles derives the per-channel vertical angles from a
// validated config. Channel 0 fires at the upper FOV limit and the last
// channel at the lower limit, with even spacing in between.
//
// A single-channel sensor has no spacing to compute; the naive formula
// divides by channels-1, so that case is handled explicitly as one ray at
// the upper limit.
func buildLaserAngles(cfg LidarConfig) []float64 {
	angles := make([]float64, cfg.Channels)
	if cfg.Channels == 1 {
		angles[0] = cfg.UpperFovLimit
		return angles
	}
	delta := (cfg.UpperFovLimit - cfg.LowerFovLimit) / float64(cfg.Channels-1)
	for i := range angles {
		angles[i] = cfg.UpperFovLimit - float64(i)*delta
	}
	return angles
}
