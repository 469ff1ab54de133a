// Package store provides the DynamoDB data access layer for submissions,
// comments and replies sharing one table.
//
// Every record is written with its primary key and the keys of two global
// secondary indexes, all derived from the record's attributes by the model
// package. Lists are served by index queries that narrow a partition with a
// sort-key prefix and page through it with opaque cursors.
//
// # Indexes
//
//   - GSI1 groups submissions by topic (ordered by ranking score), comments
//     by submission (ordered by ranking score) and replies by submission
//     (clustered by comment, ordered by creation time).
//   - GSI2 groups every kind by author, ordered by creation time.
//
// # Pagination
//
// A list returns at most Limit items and a NextCursor that is nil when no
// more results exist. Passing the cursor back as StartCursor resumes right
// after the last returned item. Cursors are bound to the listing that issued
// them; presenting one to a different partition fails with
// [ErrInvalidInputData].
//
//	page, err := s.ListSubmissionsByTopic(ctx, "news", store.ListOptions{
//	    Limit: aws.Int32(2),
//	})
//	for err == nil && page.NextCursor != nil {
//	    page, err = s.ListSubmissionsByTopic(ctx, "news", store.ListOptions{
//	        Limit:       aws.Int32(2),
//	        StartCursor: page.NextCursor,
//	    })
//	}
//
// # Deletes
//
// Deletes set a TTL on the record instead of removing it. Reads and lists
// treat a record whose TTL has passed as gone. The stream package expires the
// children of a deleted record through the relationships in a [Registry].
//
// # Errors
//
// The package defines domain-specific errors:
//
//   - [ErrBadRequest] - limit outside [1, MaxPageSize]
//   - [ErrInvalidInputData] - malformed or foreign cursor, unstorable record
//   - [ErrInvalidOutputData] - stored item does not match its entity shape
//   - [ErrServerError] - the DynamoDB request failed
//   - [ErrUnknown] - anything else
//   - [ErrNotFound] - entity doesn't exist or is deleted
//   - [ErrAlreadyExists] - entity with ID already exists
package store
