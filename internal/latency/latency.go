// Package latency injects the artificial delays and transient failures the
// UI was built against, so loading states can be exercised locally.
package latency

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sentinel-red/sentinel-backend/internal/apperr"
)

// Op names a simulated backend call.
type Op string

const (
	OpListProjects Op = "list_projects"
	OpGetProject   Op = "get_project"
	OpUpload       Op = "upload_project"
	OpDelete       Op = "delete_project"
	OpStartScan    Op = "start_scan"
	OpScanStatus   Op = "scan_status"
	OpAttackGraph  Op = "attack_graph"
	OpNodeDetails  Op = "node_details"
	OpReport       Op = "report"

	OpLogin          Op = "login"
	OpRegister       Op = "register"
	OpForgotPassword Op = "forgot_password"
	OpResetPassword  Op = "reset_password"
	OpCurrentUser    Op = "current_user"
	OpLogout         Op = "logout"
)

// DefaultDelays mirrors the response times of the mocked backend.
var DefaultDelays = map[Op]time.Duration{
	OpListProjects: 500 * time.Millisecond,
	OpGetProject:   300 * time.Millisecond,
	OpUpload:       1500 * time.Millisecond,
	OpDelete:       500 * time.Millisecond,
	OpStartScan:    500 * time.Millisecond,
	OpScanStatus:   200 * time.Millisecond,
	OpAttackGraph:  800 * time.Millisecond,
	OpNodeDetails:  500 * time.Millisecond,
	OpReport:       800 * time.Millisecond,

	OpLogin:          1000 * time.Millisecond,
	OpRegister:       1000 * time.Millisecond,
	OpForgotPassword: 800 * time.Millisecond,
	OpResetPassword:  800 * time.Millisecond,
	OpCurrentUser:    500 * time.Millisecond,
	OpLogout:         500 * time.Millisecond,
}

// Simulator delays operations. A nil *Simulator never waits or fails.
type Simulator struct {
	enabled     bool
	failureRate float64
	delays      map[Op]time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// New builds a Simulator. delays may be nil to use DefaultDelays.
func New(enabled bool, failureRate float64, delays map[Op]time.Duration) *Simulator {
	if delays == nil {
		delays = DefaultDelays
	}
	return &Simulator{
		enabled:     enabled,
		failureRate: failureRate,
		delays:      delays,
		rnd:         rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5e17)),
	}
}

// Wait sleeps the delay configured for op. It returns ctx.Err() when the
// caller goes away first, and a transient error at the configured rate.
func (s *Simulator) Wait(ctx context.Context, op Op) error {
	if s == nil {
		return nil
	}

	if s.enabled {
		if d := s.delays[op]; d > 0 {
			timer := time.NewTimer(d)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	if s.failureRate > 0 && s.roll() < s.failureRate {
		return apperr.Transient("simulated failure during %s", op)
	}
	return nil
}

func (s *Simulator) roll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}
