package docstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Topic struct {
	Title string  `bson:"title"`
	Score float64 `bson:"score"`
}

// Student is one row of TopStudents. AverageScore is nil for a student with
// no scored topics ($avg over an empty array is null).
type Student struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	AverageScore *float64           `bson:"averageScore"`
}

// TopStudentsPipeline projects each student to name and mean topic score,
// then sorts by that mean, highest first.
func TopStudentsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: 1},
			{Key: "averageScore", Value: bson.D{{Key: "$avg", Value: "$topics.score"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "averageScore", Value: -1}}}},
	}
}

// TopStudents runs TopStudentsPipeline. The cursor is lazy, single-pass and
// not restartable; the caller closes it.
func TopStudents(ctx context.Context, coll Collection) (*mongo.Cursor, error) {
	if coll == nil {
		return nil, ErrNilCollection
	}
	cur, err := coll.Aggregate(ctx, TopStudentsPipeline())
	if err != nil {
		return nil, fmt.Errorf("docstore: top students: %w", err)
	}
	return cur, nil
}
