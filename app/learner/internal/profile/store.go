package profile

import (
	"sync"
	"time"

	"github.com/lk2023060901/kidlingo/pkg/kidapi"
)

// DefaultName 未加载档案时显示的名字
const DefaultName = "Bé"

// State 学生档案快照
type State struct {
	UserID       int64
	Email        string
	FullName     string
	AvatarURL    string
	Gems         int
	Stars        int
	ReferralCode string
	Raw          *kidapi.UserProfile
	Version      uint64
}

// Action 对仓库的一次变更
type Action interface {
	Name() string
	apply(s *State)
}

// Loaded 用服务端档案整体替换状态
type Loaded struct {
	Profile *kidapi.UserProfile
}

func (Loaded) Name() string { return "loaded" }

func (a Loaded) apply(s *State) {
	p := a.Profile
	next := State{FullName: DefaultName, Raw: p, Version: s.Version}
	if p != nil {
		next.UserID = p.ID
		next.Email = p.Email
		next.ReferralCode = p.ReferralCode
		if p.FullName != "" {
			next.FullName = p.FullName
		}
		if sp := p.StudentProfile; sp != nil {
			next.Gems = sp.TotalGems
			next.Stars = sp.TotalStars
			if sp.AvatarURL != nil {
				next.AvatarURL = *sp.AvatarURL
			}
		}
	}
	*s = next
}

// RewardsAdded 乐观地增加奖励
type RewardsAdded struct {
	Gems  int
	Stars int
}

func (RewardsAdded) Name() string { return "rewards_added" }

func (a RewardsAdded) apply(s *State) {
	s.Gems += a.Gems
	s.Stars += a.Stars
}

// GemsSet 以服务端确认的余额覆盖宝石数
type GemsSet struct {
	Gems int
}

func (GemsSet) Name() string { return "gems_set" }

func (a GemsSet) apply(s *State) { s.Gems = a.Gems }

// Reset 登出或会话过期
type Reset struct{}

func (Reset) Name() string { return "reset" }

func (Reset) apply(s *State) { *s = State{FullName: DefaultName, Version: s.Version} }

// LogEntry 更新日志条目
type LogEntry struct {
	Seq    uint64
	Action Action
	Source string
	At     time.Time
}

// Store 学生档案仓库，所有变更经 Dispatch 串行执行并记入有界日志
type Store struct {
	// notifyMu 串行整个 Dispatch，订阅者按 Version 顺序收到快照
	notifyMu sync.Mutex
	mu       sync.Mutex
	state    State
	log      []LogEntry
	logSize  int
	subs     map[int]func(State)
	nextSub  int
	now      func() time.Time
}

// NewStore logSize<=0 时保留最近 100 条
func NewStore(logSize int) *Store {
	if logSize <= 0 {
		logSize = 100
	}
	return &Store{
		state:   State{FullName: DefaultName},
		logSize: logSize,
		subs:    make(map[int]func(State)),
		now:     time.Now,
	}
}

// Dispatch 应用变更并通知订阅者，返回变更后的快照。订阅者内不能再调用 Dispatch
func (s *Store) Dispatch(source string, a Action) State {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	a.apply(&s.state)
	s.state.Version++
	s.log = append(s.log, LogEntry{Seq: s.state.Version, Action: a, Source: source, At: s.now()})
	if over := len(s.log) - s.logSize; over > 0 {
		s.log = append(s.log[:0:0], s.log[over:]...)
	}
	snap := s.state
	subs := make([]func(State), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return snap
}

// Snapshot 当前状态副本
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Log 按顺序返回更新日志
func (s *Store) Log() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LogEntry, len(s.log))
	copy(out, s.log)
	return out
}

// Subscribe 订阅状态变更，按订阅顺序回调
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
