package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jan-sykora/api-demo/internal/api"
	"github.com/jan-sykora/api-demo/internal/ui"
)

func newEventsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Record and list usage events",
	}
	cmd.AddCommand(newEventsListCmd(a), newEventsCreateCmd(a), newEventsBrowseCmd(a))
	return cmd
}

func newEventsListCmd(a *app) *cobra.Command {
	var (
		pageSize  int32
		pageToken string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("page-size") {
				pageSize = a.settings.Client.PageSize
			}
			resp, err := a.client.ListEvents(cmd.Context(), &api.ListEventsRequest{
				PageSize:  pageSize,
				PageToken: pageToken,
			})
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), a.output, resp, func() string {
				out := ui.RenderEvents(ui.DefaultTheme(), resp.Events)
				if resp.NextPageToken != "" {
					out += "\nnext page: --page-token " + resp.NextPageToken
				}
				return out
			})
		},
	}
	cmd.Flags().Int32Var(&pageSize, "page-size", 0, "events per page")
	cmd.Flags().StringVar(&pageToken, "page-token", "", "token from a previous page")
	return cmd
}

func newEventsCreateCmd(a *app) *cobra.Command {
	var (
		subject  string
		source   string
		action   string
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a usage event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := a.client.CreateEvent(cmd.Context(), &api.CreateEventRequest{Event: &api.Event{
				Subject:           subject,
				Source:            source,
				Action:            action,
				ExecutionDuration: api.NewDuration(duration),
			}})
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), a.output, resp, func() string {
				return ui.RenderEvents(ui.DefaultTheme(), []*api.Event{resp.Event})
			})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "users/anonymous", "who triggered the action")
	cmd.Flags().StringVar(&source, "source", "", "service that performed the action")
	cmd.Flags().StringVar(&action, "action", "", "what was done")
	cmd.Flags().DurationVar(&duration, "duration", 0, "how long the action took")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("action")
	return cmd
}

func newEventsBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Page through events interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			model := ui.NewEventsModel(cmd.Context(), a.client, a.settings.Client.PageSize)
			_, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}
