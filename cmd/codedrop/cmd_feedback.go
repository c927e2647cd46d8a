package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/codedrop/relay/pkg/client"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Send a rating and comment to the relay operators",
	RunE:  runFeedback,
}

func init() {
	feedbackCmd.Flags().IntP("rating", "r", 0, "Rating from 1 to 5 (0 leaves it unrated)")
	feedbackCmd.Flags().StringP("message", "m", "", "Free-form comment")
}

func runFeedback(cmd *cobra.Command, args []string) error {
	rating, _ := cmd.Flags().GetInt("rating")
	message, _ := cmd.Flags().GetString("message")
	if rating < 0 || rating > 5 {
		return fmt.Errorf("rating must be between 0 and 5")
	}
	if rating == 0 && message == "" {
		return fmt.Errorf("provide --rating or --message")
	}

	res, err := newClient(cmd).SubmitFeedback(cmd.Context(), client.FeedbackRequest{
		Rating:   rating,
		Feedback: message,
	})
	if err != nil {
		return err
	}
	return render(cmd, res, func(w io.Writer) {
		fmt.Fprintf(w, "%s (%s)\n", res.Message, res.FeedbackID)
	})
}
