package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/twistedwarden/esmv2-sub001/pkg/wallclock"
)

func TestAllocateConsecutiveWithGap(t *testing.T) {
	slots, err := AllocateConsecutive("09:00", 30, 15, 3)
	require.NoError(t, err)
	require.Len(t, slots, 3)

	require.Equal(t, 540, slots[0].StartMinutes) // 09:00
	require.Equal(t, 585, slots[1].StartMinutes) // 09:45
	require.Equal(t, 630, slots[2].StartMinutes) // 10:30

	for i := 1; i < len(slots); i++ {
		require.Equal(t, slots[i-1].EndMinutes+15, slots[i].StartMinutes)
	}
}

func TestAllocateConsecutiveSlotsNeverOverlap(t *testing.T) {
	slots, err := AllocateConsecutive("08:00", 45, 0, 6)
	require.NoError(t, err)
	require.Len(t, slots, 6)

	for i := range slots {
		for j := i + 1; j < len(slots); j++ {
			overlaps := slots[i].StartMinutes < slots[j].EndMinutes && slots[j].StartMinutes < slots[i].EndMinutes
			require.False(t, overlaps, "slots %d and %d overlap", i, j)
		}
	}
}

func TestAllocateConsecutiveRejectsBadInput(t *testing.T) {
	_, err := AllocateConsecutive("09:00", 30, 0, 0)
	require.Error(t, err)

	_, err = AllocateConsecutive("09:00", 0, 0, 3)
	require.Error(t, err)

	_, err = AllocateConsecutive("09:00", 30, -5, 3)
	require.Error(t, err)

	_, err = AllocateConsecutive("25:00", 30, 0, 3)
	require.Error(t, err)
}

func TestAllocateConsecutiveRejectsMidnightCrossing(t *testing.T) {
	// 23:00 + three 30-minute slots with gaps would end at 00:30 the next
	// day; offsets past 24:00 must never be produced.
	_, err := AllocateConsecutive("23:00", 30, 15, 3)
	require.ErrorIs(t, err, wallclock.ErrInvalidRange)

	slots, err := AllocateConsecutive("23:00", 30, 0, 2)
	require.NoError(t, err)
	require.Equal(t, wallclock.MinutesPerDay, slots[1].EndMinutes)
}

func TestFindNextAvailableSkipsBookedSlots(t *testing.T) {
	repo := newMemoryScheduleRepo()
	availability := NewAvailabilityService(repo, testLogger())
	svc := NewSlotService(availability, SlotWindow{}, testLogger())

	// 08:00-09:00 booked; the first free 30-minute slot is 09:00.
	seedBooking(t, repo, 4, "2026-03-02", 480, 60)

	slot, err := svc.FindNextAvailable(context.Background(), 4, "2026-03-02", 30)
	require.NoError(t, err)
	require.Equal(t, 540, slot.StartMinutes)
	require.Equal(t, "9:00 AM", slot.DisplayStart)
}

func TestFindNextAvailableExhaustedWindow(t *testing.T) {
	repo := newMemoryScheduleRepo()
	availability := NewAvailabilityService(repo, testLogger())
	svc := NewSlotService(availability, SlotWindow{WorkStart: "09:00", WorkEnd: "10:00", Granularity: 30}, testLogger())

	// The whole 09:00-10:00 window is taken.
	seedBooking(t, repo, 4, "2026-03-02", 540, 60)

	_, err := svc.FindNextAvailable(context.Background(), 4, "2026-03-02", 30)
	require.ErrorIs(t, err, ErrNoAvailability)
}

func TestFindNextAvailableRespectsWindowEnd(t *testing.T) {
	repo := newMemoryScheduleRepo()
	availability := NewAvailabilityService(repo, testLogger())
	svc := NewSlotService(availability, SlotWindow{WorkStart: "16:00", WorkEnd: "17:00", Granularity: 30}, testLogger())

	// A 90-minute interview cannot end inside a 60-minute window.
	_, err := svc.FindNextAvailable(context.Background(), 4, "2026-03-02", 90)
	require.ErrorIs(t, err, ErrNoAvailability)
}
