package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/foliolab/folio/internal/app"
	"github.com/foliolab/folio/internal/folio"
)

func projectsCommand() *cli.Command {
	return &cli.Command{
		Name:  "projects",
		Usage: "manage portfolio projects",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list all projects",
				Action: projectsListAction,
			},
			{
				Name:      "get",
				Usage:     "show one project",
				ArgsUsage: "<id>",
				Action:    projectsGetAction,
			},
			{
				Name:   "create",
				Usage:  "create a project",
				Flags:  projectFormFlags(),
				Action: projectsCreateAction,
			},
			{
				Name:      "update",
				Usage:     "update a project",
				ArgsUsage: "<id>",
				Flags:     projectFormFlags(),
				Action:    projectsUpdateAction,
			},
			{
				Name:      "delete",
				Usage:     "delete a project",
				ArgsUsage: "<id>",
				Action:    projectsDeleteAction,
			},
		},
	}
}

func projectFormFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "project title"},
		&cli.StringFlag{Name: "description", Usage: "project description"},
		&cli.StringFlag{Name: "repo-url", Usage: "source repository URL"},
		&cli.StringFlag{Name: "demo-url", Usage: "live demo URL"},
		&cli.StringFlag{Name: "image-url", Usage: "cover image URL (see the upload command)"},
		&cli.StringSliceFlag{Name: "tag", Usage: "tag (repeatable)"},
	}
}

// formFromFlags assembles the multipart form the mutation endpoints expect.
func formFromFlags(cmd *cli.Command) folio.ProjectForm {
	return folio.ProjectForm{
		Title:       cmd.String("title"),
		Description: cmd.String("description"),
		RepoURL:     cmd.String("repo-url"),
		DemoURL:     cmd.String("demo-url"),
		ImageURL:    cmd.String("image-url"),
		Tags:        cmd.StringSlice("tag"),
	}
}

// newClient is the shared preamble of every projects action.
func newClient(cmd *cli.Command) (*folio.Client, error) {
	cfg, err := loadAndInstrument(cmd)
	if err != nil {
		return nil, err
	}
	client, _, err := app.NewClient(cfg)
	return client, err
}

// requireID returns the positional project id argument.
func requireID(cmd *cli.Command) (string, error) {
	id := cmd.Args().First()
	if id == "" {
		return "", fmt.Errorf("project id required")
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func projectsListAction(ctx context.Context, cmd *cli.Command) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	projects, err := client.List(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd.Writer, projects)
}

func projectsGetAction(ctx context.Context, cmd *cli.Command) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	id, err := requireID(cmd)
	if err != nil {
		return err
	}

	project, err := client.Get(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(cmd.Writer, project)
}

func projectsCreateAction(ctx context.Context, cmd *cli.Command) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	project, err := client.Create(ctx, formFromFlags(cmd))
	if err != nil {
		return err
	}
	return printJSON(cmd.Writer, project)
}

func projectsUpdateAction(ctx context.Context, cmd *cli.Command) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	id, err := requireID(cmd)
	if err != nil {
		return err
	}

	project, err := client.Update(ctx, id, formFromFlags(cmd))
	if err != nil {
		return err
	}
	return printJSON(cmd.Writer, project)
}

func projectsDeleteAction(ctx context.Context, cmd *cli.Command) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	id, err := requireID(cmd)
	if err != nil {
		return err
	}

	result, err := client.Delete(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Writer, result.Message)
	return nil
}
