package runtime

import (
	"edusmarthub/domain"

	"github.com/samber/lo"
)

// Status computes the snapshot of a classroom: members by role, engagement and the
// most recent persisted activity. Engagement is the share of student members whose last
// activity falls within the engagement window, as a percentage; 0 without students.
func (d *Dispatcher) Status(classroomID string) domain.Status {
	scope := domain.ClassroomScope(classroomID)
	now := d.now().UTC()

	byRole := lo.SliceToMap(domain.Roles, func(r domain.Role) (domain.Role, int) { return r, 0 })
	total, students, active := 0, 0, 0
	for _, id := range d.rooms.MembersOf(scope.Room()) {
		identity, ok := d.registry.Identity(id)
		if !ok {
			continue
		}
		total++
		byRole[identity.Role]++
		if identity.Role != domain.RoleStudent {
			continue
		}
		students++
		if last, ok := d.registry.LastActivity(id); ok && now.Sub(last) <= d.config.EngagementWindow {
			active++
		}
	}

	engagement := 0.0
	if students > 0 {
		engagement = float64(active) / float64(students) * 100
	}

	return domain.Status{
		ClassroomID:    classroomID,
		TotalConnected: total,
		ByRole:         byRole,
		ActiveStudents: active,
		Engagement:     engagement,
		RecentActivity: d.recentActivity(scope.Room()),
		At:             now,
	}
}

func (d *Dispatcher) recentActivity(room domain.RoomKey) []domain.ActivityRecord {
	if d.messages == nil || d.config.RecentActivityLimit <= 0 {
		return []domain.ActivityRecord{}
	}
	messages, err := d.messages.GetRecentMessages(room, d.config.RecentActivityLimit)
	if err != nil {
		d.log.Warn("Recent activity unavailable", "room", room, "error", err)
		return []domain.ActivityRecord{}
	}
	return lo.Map(messages, func(m domain.Message, _ int) domain.ActivityRecord {
		return domain.ActivityRecord{
			Type:       m.Type,
			SenderID:   m.SenderID,
			SenderName: m.SenderName,
			Content:    m.Content,
			At:         m.Timestamp,
		}
	})
}
