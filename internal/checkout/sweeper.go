package checkout

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/avstrong/luxestay/internal/logger"
)

type evicter interface {
	Evict(cutoff time.Time) int
}

type SweeperConf struct {
	L *logger.Logger
	// Spec is a cron expression or descriptor such as "@every 1m".
	Spec string
	TTL  time.Duration
}

// Sweeper periodically drops checkout sessions that were left idle for longer than TTL.
type Sweeper struct {
	l   *logger.Logger
	c   *cron.Cron
	svc evicter
	ttl time.Duration
	now func() time.Time
}

func NewSweeper(conf SweeperConf, svc evicter) (*Sweeper, error) {
	l := conf.L
	if l == nil {
		l = logger.Discard()
	}

	if conf.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %v", conf.TTL)
	}

	s := &Sweeper{
		l:   l,
		c:   cron.New(),
		svc: svc,
		ttl: conf.TTL,
		now: time.Now,
	}

	if _, err := s.c.AddFunc(conf.Spec, s.Sweep); err != nil {
		return nil, fmt.Errorf("schedule session sweep %q: %w", conf.Spec, err)
	}

	return s, nil
}

// Sweep runs one eviction pass.
func (s *Sweeper) Sweep() {
	if n := s.svc.Evict(s.now().Add(-s.ttl)); n > 0 {
		s.l.LogInfo("Evicted %d idle checkout sessions", n)
	}
}

func (s *Sweeper) Start() {
	s.c.Start()
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.c.Stop().Done()
}
