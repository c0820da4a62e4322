// Package moderation holds the status transition tables for every content
// kind. AllowedActions is consulted by the list decoration path and by the
// mutation path before any database write, so the two can never drift apart.
package moderation

import (
	"github.com/forumdesk/admin-api/internal/model"
)

type Kind string

const (
	KindPost     Kind = "post"
	KindQuestion Kind = "question"
	KindAnswer   Kind = "answer"
	KindComment  Kind = "comment"
	KindReport   Kind = "report"
)

type Action string

const (
	ActionPublish   Action = "publish"
	ActionArchive   Action = "archive"
	ActionRestore   Action = "restore"
	ActionSolve     Action = "solve"
	ActionUnsolve   Action = "unsolve"
	ActionClose     Action = "close"
	ActionReopen    Action = "reopen"
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionDelete    Action = "delete"
	ActionResolve   Action = "resolve"
	ActionDismiss   Action = "dismiss"
	ActionFeature   Action = "feature"
	ActionUnfeature Action = "unfeature"
	ActionAccept    Action = "accept"
)

// Flags carries the orthogonal booleans that gate flag actions. They are tags
// on the item, not states; status transitions never touch them.
type Flags struct {
	IsFeatured bool
	IsAccepted bool

	// AcceptedAnswerId of the owning question ("" when no answer is accepted
	// yet). The server enforces single-accepted-answer; the machine only
	// mirrors it and never tracks acceptance across answers it cannot see.
	AcceptedAnswerId string
}

type rule struct {
	from   string
	to     string
	action Action
}

var transitions = map[Kind][]rule{
	KindPost: {
		{model.PostStatusDraft, model.PostStatusPublished, ActionPublish},
		{model.PostStatusPublished, model.PostStatusArchived, ActionArchive},
		{model.PostStatusArchived, model.PostStatusPublished, ActionRestore},
	},
	KindQuestion: {
		{model.QuestionStatusOpen, model.QuestionStatusSolved, ActionSolve},
		{model.QuestionStatusSolved, model.QuestionStatusOpen, ActionUnsolve},
		{model.QuestionStatusOpen, model.QuestionStatusClosed, ActionClose},
		{model.QuestionStatusClosed, model.QuestionStatusOpen, ActionReopen},
	},
	KindAnswer: {
		{model.AnswerStatusPending, model.AnswerStatusApproved, ActionApprove},
		{model.AnswerStatusPending, model.AnswerStatusRejected, ActionReject},
	},
	KindComment: {
		{model.CommentStatusPending, model.CommentStatusApproved, ActionApprove},
		{model.CommentStatusPending, model.CommentStatusRejected, ActionReject},
		{model.CommentStatusPending, model.CommentStatusDeleted, ActionDelete},
		{model.CommentStatusApproved, model.CommentStatusDeleted, ActionDelete},
		{model.CommentStatusRejected, model.CommentStatusDeleted, ActionDelete},
	},
	KindReport: {
		{model.ReportStatusPending, model.ReportStatusResolved, ActionResolve},
		{model.ReportStatusPending, model.ReportStatusDismissed, ActionDismiss},
	},
}

var initialStatus = map[Kind]string{
	KindPost:     model.PostStatusDraft,
	KindQuestion: model.QuestionStatusOpen,
	KindAnswer:   model.AnswerStatusPending,
	KindComment:  model.CommentStatusPending,
	KindReport:   model.ReportStatusPending,
}

// Statuses returns every status the kind's transition table knows about.
func Statuses(kind Kind) []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	add(initialStatus[kind])
	for _, r := range transitions[kind] {
		add(r.from)
		add(r.to)
	}
	return out
}

// ValidStatus reports whether status belongs to the kind at all.
func ValidStatus(kind Kind, status string) bool {
	for _, s := range Statuses(kind) {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransition reports whether from→to is present in the kind's table.
func CanTransition(kind Kind, from string, to string) bool {
	for _, r := range transitions[kind] {
		if r.from == from && r.to == to {
			return true
		}
	}
	return false
}

// Target resolves the destination status of an action from the current
// status. The second return is false when the action is not a status
// transition for this kind and status.
func Target(kind Kind, from string, action Action) (string, bool) {
	for _, r := range transitions[kind] {
		if r.from == from && r.action == action {
			return r.to, true
		}
	}
	return "", false
}

// AllowedActions enumerates the actions a moderator may take on an item in
// the given status with the given flags. Status transitions come straight
// from the table; flag actions (feature, accept) are appended by their own
// rules. Pure and deterministic.
func AllowedActions(kind Kind, status string, flags Flags) []Action {
	var out []Action
	for _, r := range transitions[kind] {
		if r.from == status {
			out = append(out, r.action)
		}
	}

	switch kind {
	case KindQuestion:
		// Featuring is a tag, offered regardless of status.
		if flags.IsFeatured {
			out = append(out, ActionUnfeature)
		} else {
			out = append(out, ActionFeature)
		}
	case KindAnswer:
		// Accept only when approved and the question has no accepted answer
		// yet. Once acceptedAnswerId is set, no answer offers accept; a
		// refetch after acceptance makes the action disappear everywhere.
		if status == model.AnswerStatusApproved && !flags.IsAccepted && flags.AcceptedAnswerId == "" {
			out = append(out, ActionAccept)
		}
	}

	return out
}

// Allows reports whether AllowedActions would offer the action. Mutation
// handlers call this before writing, so the submit path and the render path
// share one rule set.
func Allows(kind Kind, status string, flags Flags, action Action) bool {
	for _, a := range AllowedActions(kind, status, flags) {
		if a == action {
			return true
		}
	}
	return false
}

// ActionNames converts to the wire representation used by list responses.
func ActionNames(actions []Action) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, string(a))
	}
	return out
}
