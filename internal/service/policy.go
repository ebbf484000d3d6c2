package service

import "meterdesk/internal/domain"

// Role visibility rules, stated explicitly instead of leaning on
// database-side row policies. Admins see and mutate everything; field
// roles see their own tasks and records and read the meter registry.

func canManageTasks(a domain.Actor) bool  { return a.Role == domain.RoleAdmin }
func canManageMeters(a domain.Actor) bool { return a.Role == domain.RoleAdmin }
func canManageUsers(a domain.Actor) bool  { return a.Role == domain.RoleAdmin }

func canViewTask(a domain.Actor, t *domain.Task) bool {
	if a.Role == domain.RoleAdmin {
		return true
	}
	return t.AssignedUserID == a.ID
}

// canCompleteTask: only the assignee submits a completion; admins use the
// edit override instead.
func canCompleteTask(a domain.Actor, t *domain.Task) bool {
	return t.AssignedUserID == a.ID
}

func canEditReading(a domain.Actor, recordedBy string) bool {
	if a.Role == domain.RoleAdmin {
		return true
	}
	return recordedBy == a.ID
}
