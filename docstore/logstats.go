package docstore

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Methods are the HTTP methods LogStats counts, in report order.
var Methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

type MethodCount struct {
	Method string
	Count  int64
}

// Stats summarises an nginx request-log collection.
type Stats struct {
	Total       int64
	Methods     []MethodCount
	StatusCheck int64 // GET /status
}

// LogStats counts all documents, documents per method, and GET /status checks.
func LogStats(ctx context.Context, coll Collection) (Stats, error) {
	if coll == nil {
		return Stats{}, ErrNilCollection
	}
	var st Stats
	var err error
	if st.Total, err = coll.CountDocuments(ctx, bson.D{}); err != nil {
		return Stats{}, fmt.Errorf("docstore: count logs: %w", err)
	}
	st.Methods = make([]MethodCount, 0, len(Methods))
	for _, m := range Methods {
		n, err := coll.CountDocuments(ctx, bson.D{{Key: "method", Value: m}})
		if err != nil {
			return Stats{}, fmt.Errorf("docstore: count %s logs: %w", m, err)
		}
		st.Methods = append(st.Methods, MethodCount{Method: m, Count: n})
	}
	st.StatusCheck, err = coll.CountDocuments(ctx, bson.D{
		{Key: "method", Value: "GET"},
		{Key: "path", Value: "/status"},
	})
	if err != nil {
		return Stats{}, fmt.Errorf("docstore: count status checks: %w", err)
	}
	return st, nil
}

// String renders:
//
//	94778 logs
//	Methods:
//		method GET: 93842
//		...
//	47415 status check
func (s Stats) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d logs\nMethods:\n", s.Total)
	for _, m := range s.Methods {
		fmt.Fprintf(&sb, "\tmethod %s: %d\n", m.Method, m.Count)
	}
	fmt.Fprintf(&sb, "%d status check\n", s.StatusCheck)
	return sb.String()
}
