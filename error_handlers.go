package jobsys

// reportJobPanic reports a panic recovered from a job callable.
//
// A panicking job is treated as completed: its counter is still
// decremented so the batch can finish. If no handler is registered the
// panic is only logged.
func (s *System) reportJobPanic(recovered any) {
	if s.OnJobPanic != nil {
		s.OnJobPanic(recovered)
	}
}

// reportInternalError reports a non-job failure inside the system, such
// as a worker setup problem. If no handler is registered, the error is
// silently ignored.
func (s *System) reportInternalError(e error) {
	if s.OnInternalError != nil {
		s.OnInternalError(e)
	}
}
