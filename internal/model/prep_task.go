package model

import "time"

// PrepTask is a checklist item an act works through before a
// performance.  Tasks are generated by preparation tooling; the lifecycle
// engine only toggles their done state.
type PrepTask struct {
	ID              string     // prep_tasks.id
	PerformanceID   string     // prep_tasks.performance_id
	TaskKey         string     // prep_tasks.task_key
	ActID           string     // prep_tasks.act_id
	DueDate         *time.Time // prep_tasks.due_date (nullable)
	IsDone          bool       // prep_tasks.is_done
	DoneAt          *time.Time // prep_tasks.done_at (nullable)
	DoneByProfileID *string    // prep_tasks.done_by_profile_id (nullable)
}
