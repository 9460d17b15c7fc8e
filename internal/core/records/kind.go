// Package records defines the record kinds collected from GitHub, their
// natural keys, and the chunk and checkpoint documents staged in object
// storage. Everything here is pure data plumbing; no I/O
package records

import (
	"fmt"

	perr "ghstats/internal/platform/errors"
)

// Kind enumerates the record kinds the pipeline collects.
// The zero value is invalid on purpose so an unset Kind is caught early
type Kind int

// The closed set of record kinds. Adding one means extending every
// exhaustive switch in this package and the warehouse drivers
const (
	KindPullRequest Kind = iota + 1
	KindCommit
	KindReview
	KindReviewComment
	KindIssueComment
)

// Kinds returns all kinds in publish order
func Kinds() []Kind {
	return []Kind{KindPullRequest, KindCommit, KindReview, KindReviewComment, KindIssueComment}
}

// String returns the canonical name, which doubles as the warehouse table
// name and the object-store path segment
func (k Kind) String() string {
	switch k {
	case KindPullRequest:
		return "pull_requests"
	case KindCommit:
		return "commits"
	case KindReview:
		return "reviews"
	case KindReviewComment:
		return "review_comments"
	case KindIssueComment:
		return "issue_comments"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Table returns the permanent warehouse table name for the kind
func (k Kind) Table() string { return k.String() }

// KeyColumns returns the natural key column tuple for the kind.
// Merge statements match on exactly these columns
func (k Kind) KeyColumns() []string {
	switch k {
	case KindPullRequest:
		return []string{"pr_number", "repository", "organization"}
	case KindCommit:
		return []string{"sha", "repository", "organization"}
	case KindReview:
		return []string{"review_id", "repository", "organization"}
	case KindReviewComment, KindIssueComment:
		return []string{"comment_id", "repository", "organization"}
	default:
		return nil
	}
}

// Prototype returns the kind's zero row struct, used to derive warehouse
// table schemas
func (k Kind) Prototype() Row {
	switch k {
	case KindPullRequest:
		return PullRequest{}
	case KindCommit:
		return Commit{}
	case KindReview:
		return Review{}
	case KindReviewComment:
		return ReviewComment{}
	case KindIssueComment:
		return IssueComment{}
	default:
		return nil
	}
}

// Valid reports whether k is one of the declared kinds
func (k Kind) Valid() bool {
	switch k {
	case KindPullRequest, KindCommit, KindReview, KindReviewComment, KindIssueComment:
		return true
	default:
		return false
	}
}

// ParseKind maps a canonical name back to its Kind
func ParseKind(s string) (Kind, error) {
	switch s {
	case "pull_requests":
		return KindPullRequest, nil
	case "commits":
		return KindCommit, nil
	case "reviews":
		return KindReview, nil
	case "review_comments":
		return KindReviewComment, nil
	case "issue_comments":
		return KindIssueComment, nil
	default:
		return 0, perr.Newf(perr.ErrorCodeInvalidArgument, "unknown record kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so Kind serializes as its
// canonical name, including as a JSON map key
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "cannot marshal invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
