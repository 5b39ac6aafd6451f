package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alfredjeanlab/sitekeep/internal/model"
	"github.com/spf13/cobra"
)

var postCmd = &cobra.Command{
	Use:     "post",
	Short:   "Read blog and timeline posts",
	GroupID: "content",
}

func postDomainArg(s string) (model.PostDomain, error) {
	d := model.PostDomain(s)
	if !d.IsValid() {
		return "", fmt.Errorf("unknown post domain %q (must be blog or timeline)", s)
	}
	return d, nil
}

var postListCmd = &cobra.Command{
	Use:   "list [blog|timeline]",
	Short: "List posts, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := string(model.PostDomainBlog)
		if len(args) == 1 {
			name = args[0]
		}
		domain, err := postDomainArg(name)
		if err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		filter := model.PostFilter{Domain: domain, Status: model.PostStatus(status), Limit: limit}
		if filter.Status != "" && !filter.Status.IsValid() {
			return fmt.Errorf("unknown status %q (must be draft or published)", status)
		}

		gw, err := gateway()
		if err != nil {
			return err
		}
		posts, err := gw.ListPosts(context.Background(), filter)
		if err != nil {
			return fmt.Errorf("listing posts: %w", err)
		}
		if jsonOutput {
			return printJSON(os.Stdout, posts)
		}
		printPostsTable(os.Stdout, posts)
		return nil
	},
}

var postGetCmd = &cobra.Command{
	Use:   "get <blog|timeline> <slug>",
	Short: "Show one post",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		domain, err := postDomainArg(args[0])
		if err != nil {
			return err
		}
		gw, err := gateway()
		if err != nil {
			return err
		}
		p, err := gw.GetPost(context.Background(), domain, args[1])
		if err != nil {
			return fmt.Errorf("getting post %s/%s: %w", domain, args[1], err)
		}
		if jsonOutput {
			return printJSON(os.Stdout, p)
		}
		printPost(os.Stdout, p)
		return nil
	},
}

var postDeleteCmd = &cobra.Command{
	Use:     "delete <blog|timeline> <slug>",
	Aliases: []string{"rm"},
	Short:   "Delete a post",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		domain, err := postDomainArg(args[0])
		if err != nil {
			return err
		}
		gw, err := gateway()
		if err != nil {
			return err
		}
		if err := gw.DeletePost(context.Background(), domain, args[1]); err != nil {
			return fmt.Errorf("deleting post %s/%s: %w", domain, args[1], err)
		}
		fmt.Printf("Deleted %s/%s\n", domain, args[1])
		return nil
	},
}

func init() {
	postListCmd.Flags().String("status", "", "filter by status (draft or published)")
	postListCmd.Flags().Int("limit", 0, "maximum number of posts (0 = all)")

	postCmd.AddCommand(postListCmd)
	postCmd.AddCommand(postGetCmd)
	postCmd.AddCommand(postDeleteCmd)
}
