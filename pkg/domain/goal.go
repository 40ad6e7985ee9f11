package domain

// GoalCode declares the intended purpose of an out-of-band invitation.
// It is free-form; only the values below are interpreted.
type GoalCode string

const (
	GoalVerify     GoalCode = "aries.vc.verify"
	GoalVerifyOnce GoalCode = "aries.vc.verify.once"
	GoalIssue      GoalCode = "aries.vc.issue"
)

// Known reports whether the goal code is part of the interpreted vocabulary.
func (g GoalCode) Known() bool {
	return g.IsVerify() || g.IsIssue()
}

// IsVerify reports whether the invitation asks for a proof (once or repeatedly).
func (g GoalCode) IsVerify() bool {
	return g == GoalVerify || g == GoalVerifyOnce
}

// IsIssue reports whether the invitation offers a credential.
func (g GoalCode) IsIssue() bool {
	return g == GoalIssue
}
