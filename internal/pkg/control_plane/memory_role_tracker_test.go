package control_plane_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/roackb2/snowdream/internal/pkg/agents/roles"
	"github.com/roackb2/snowdream/internal/pkg/control_plane"
	"github.com/stretchr/testify/assert"
)

func TestMemoryRoleTracker(t *testing.T) {
	tracker := control_plane.NewMemoryRoleTracker()

	t.Run("AddTracking and GetTracking", func(t *testing.T) {
		tracking := control_plane.RoleTracking{Name: "role1", Phase: roles.PhaseIdle}
		tracker.AddTracking("role1", tracking)

		retrieved, ok := tracker.GetTracking("role1")
		assert.True(t, ok)
		assert.Equal(t, tracking, retrieved)

		_, notFound := tracker.GetTracking("nonexistent")
		assert.False(t, notFound)
	})

	t.Run("UpdateTracking", func(t *testing.T) {
		tracker.AddTracking("role2", control_plane.RoleTracking{Name: "role2", Phase: roles.PhaseIdle})
		updated := control_plane.RoleTracking{Name: "role2", Phase: roles.PhaseExecuting, Action: "Analyze"}
		tracker.UpdateTracking("role2", updated)

		retrieved, ok := tracker.GetTracking("role2")
		assert.True(t, ok)
		assert.Equal(t, updated, retrieved)
	})

	t.Run("RemoveTracking", func(t *testing.T) {
		tracker.AddTracking("role3", control_plane.RoleTracking{Name: "role3"})
		tracker.RemoveTracking("role3")

		_, ok := tracker.GetTracking("role3")
		assert.False(t, ok)
	})

	t.Run("GetAllTrackings", func(t *testing.T) {
		tracker.AddTracking("role5", control_plane.RoleTracking{Name: "role5"})
		tracker.AddTracking("role4", control_plane.RoleTracking{Name: "role4"})

		all := tracker.GetAllTrackings()
		names := make([]string, 0, len(all))
		for _, tracking := range all {
			names = append(names, tracking.Name)
		}
		assert.Equal(t, []string{"role1", "role2", "role4", "role5"}, names)
	})

	t.Run("ThreadSafety", func(t *testing.T) {
		const numGoroutines = 100
		const numOperations = 1000
		tracker := control_plane.NewMemoryRoleTracker()

		var wg sync.WaitGroup
		wg.Add(numGoroutines * 3)
		for i := 0; i < numGoroutines; i++ {
			name := fmt.Sprintf("role%d", i)
			tracker.AddTracking(name, control_plane.RoleTracking{Name: name, Phase: roles.PhaseIdle})

			go func() {
				defer wg.Done()
				for j := 0; j < numOperations; j++ {
					tracker.GetTracking(name)
				}
			}()
			go func() {
				defer wg.Done()
				for j := 0; j < numOperations; j++ {
					tracker.UpdateTracking(name, control_plane.RoleTracking{Name: name, Phase: roles.PhaseRecording})
				}
			}()
			go func() {
				defer wg.Done()
				for j := 0; j < numOperations; j++ {
					tracker.GetAllTrackings()
				}
			}()
		}
		wg.Wait()

		all := tracker.GetAllTrackings()
		assert.Len(t, all, numGoroutines)
		for _, tracking := range all {
			assert.Equal(t, roles.PhaseRecording, tracking.Phase)
		}
	})
}
