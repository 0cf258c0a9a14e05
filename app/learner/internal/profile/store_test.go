package profile

import (
	"sync"
	"testing"

	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreDispatch(t *testing.T) {
	s := NewStore(0)
	assert.Equal(t, DefaultName, s.Snapshot().FullName)

	avatar := "https://cdn/a.png"
	s.Dispatch("refresh", Loaded{Profile: &kidapi.UserProfile{
		ID:           3,
		FullName:     "Bin",
		ReferralCode: "BIN123ABC",
		StudentProfile: &kidapi.StudentProfile{
			TotalGems:  40,
			TotalStars: 6,
			AvatarURL:  &avatar,
		},
	}})
	s.Dispatch("lesson_complete", RewardsAdded{Gems: 10, Stars: 3})
	st := s.Dispatch("shop_buy", GemsSet{Gems: 5})

	assert.Equal(t, int64(3), st.UserID)
	assert.Equal(t, 5, st.Gems)
	assert.Equal(t, 9, st.Stars)
	assert.Equal(t, avatar, st.AvatarURL)
	assert.Equal(t, uint64(3), st.Version)

	log := s.Log()
	require.Len(t, log, 3)
	for i, e := range log {
		assert.Equal(t, uint64(i+1), e.Seq)
	}
	assert.Equal(t, "rewards_added", log[1].Action.Name())
	assert.Equal(t, "shop_buy", log[2].Source)
}

func TestLoadedReplacesOptimisticState(t *testing.T) {
	s := NewStore(0)
	s.Dispatch("test", RewardsAdded{Gems: 500})
	st := s.Dispatch("refresh", Loaded{Profile: &kidapi.UserProfile{ID: 1}})
	assert.Zero(t, st.Gems)
	assert.Equal(t, DefaultName, st.FullName)

	st = s.Dispatch("logout", Reset{})
	assert.Zero(t, st.UserID)
	assert.Equal(t, uint64(3), st.Version)
}

func TestStoreLogIsBounded(t *testing.T) {
	s := NewStore(2)
	for i := 0; i < 5; i++ {
		s.Dispatch("test", RewardsAdded{Gems: 1})
	}
	log := s.Log()
	require.Len(t, log, 2)
	assert.Equal(t, uint64(4), log[0].Seq)
	assert.Equal(t, uint64(5), log[1].Seq)
}

func TestStoreSubscribe(t *testing.T) {
	s := NewStore(0)
	var got []int
	unsubscribe := s.Subscribe(func(st State) { got = append(got, st.Gems) })

	s.Dispatch("a", GemsSet{Gems: 1})
	s.Dispatch("b", GemsSet{Gems: 2})
	unsubscribe()
	s.Dispatch("c", GemsSet{Gems: 3})

	assert.Equal(t, []int{1, 2}, got)
}

func TestStoreConcurrentDispatch(t *testing.T) {
	s := NewStore(1000)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch("test", RewardsAdded{Gems: 1, Stars: 1})
		}()
	}
	wg.Wait()

	st := s.Snapshot()
	assert.Equal(t, 50, st.Gems)
	assert.Equal(t, uint64(50), st.Version)
	assert.Len(t, s.Log(), 50)
}

func TestStoreSubscribersSeeOrderedVersions(t *testing.T) {
	s := NewStore(0)
	var (
		mu       sync.Mutex
		versions []uint64
	)
	s.Subscribe(func(st State) {
		mu.Lock()
		versions = append(versions, st.Version)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch("test", RewardsAdded{Gems: 1})
		}()
	}
	wg.Wait()

	require.Len(t, versions, 50)
	for i, v := range versions {
		assert.Equal(t, uint64(i+1), v)
	}
}
