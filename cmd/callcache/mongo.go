package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/unkn0wn-root/callcache/docstore"
)

func (a *app) withMongo(ctx context.Context, fn func(*mongo.Client) error) error {
	client, err := docstore.Connect(ctx, a.cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	a.log.Debug("connected to mongo")
	return fn(client)
}

func newSchoolsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schools <topic>",
		Short: "List schools teaching topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withMongo(ctx, func(client *mongo.Client) error {
				cur, err := docstore.SchoolsByTopic(ctx, docstore.Schools(client, a.cfg.Mongo), args[0])
				if err != nil {
					return err
				}
				defer cur.Close(ctx)
				for cur.Next(ctx) {
					var s docstore.School
					if err := cur.Decode(&s); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s %s\n", s.ID.Hex(), s.Name, strings.Join(s.Topics, ","))
				}
				return cur.Err()
			})
		},
	}
}

func newTopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "top",
		Short: "List students by average topic score, highest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return a.withMongo(ctx, func(client *mongo.Client) error {
				cur, err := docstore.TopStudents(ctx, docstore.Schools(client, a.cfg.Mongo))
				if err != nil {
					return err
				}
				defer cur.Close(ctx)
				for cur.Next(ctx) {
					var s docstore.Student
					if err := cur.Decode(&s); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s => %s\n", s.ID.Hex(), s.Name, formatScore(s.AverageScore))
				}
				return cur.Err()
			})
		},
	}
}

func formatScore(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *p)
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise the nginx request-log collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return a.withMongo(ctx, func(client *mongo.Client) error {
				st, err := docstore.LogStats(ctx, docstore.Logs(client, a.cfg.Mongo))
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), st.String())
				return err
			})
		},
	}
}
