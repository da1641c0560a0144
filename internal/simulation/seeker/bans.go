package seeker

import (
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/mechanism"
)

// FraudRecord is the detection history a ban policy reads.
type FraudRecord struct {
	Detections    int
	LastDetection int
	Permanent     bool
}

// BanPolicy decides whether a seeker may apply in a period.
type BanPolicy interface {
	IsBanned(record FraudRecord, period int) bool
}

// EscalatingBans bans for First periods after one detection, Second periods
// after two (measured from the latest detection), and permanently after that.
type EscalatingBans struct {
	First  int
	Second int
}

func (b EscalatingBans) IsBanned(r FraudRecord, period int) bool {
	if r.Permanent {
		return true
	}
	elapsed := period - r.LastDetection
	switch r.Detections {
	case 0:
		return false
	case 1:
		return elapsed < b.First
	case 2:
		return elapsed < b.Second
	}
	return true
}

// NoBans is used when the fraud-history mechanism is off.
type NoBans struct{}

func (NoBans) IsBanned(FraudRecord, int) bool { return false }

const permanentBanDetections = 3

func newBanPolicy(cfg mechanism.Config) BanPolicy {
	if !cfg.FraudHistoryEnabled {
		return NoBans{}
	}
	return EscalatingBans{First: 6, Second: 12}
}

// RecordFraudDetection counts a detection in period. The third detection
// makes the ban permanent.
func (s *Seeker) RecordFraudDetection(period int) {
	s.fraud.Detections++
	s.fraud.LastDetection = period
	if s.fraud.Detections >= permanentBanDetections {
		if !s.fraud.Permanent {
			s.logger.Debug("seeker permanently banned", "seeker_id", s.profile.ID, "period", period)
		}
		s.fraud.Permanent = true
	}
}

// IsBanned reports whether the ban policy bars applying in period.
func (s *Seeker) IsBanned(period int) bool {
	return s.bans.IsBanned(s.fraud, period)
}

func (s *Seeker) FraudRecord() FraudRecord {
	return s.fraud
}
