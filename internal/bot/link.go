package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/splitbot-dev/splitbot/internal/model"
	"github.com/splitbot-dev/splitbot/internal/services/rounds"
)

// Link ties the invoking user to a speedrun.com account. With an empty
// username it shows the stored link (with an unlink button) instead.
func (b *Bot) Link(ctx context.Context, inv Invocation, username string) error {
	if username == "" {
		return b.showLink(ctx, inv)
	}

	if existing, err := b.store.GetLink(ctx, inv.UserID); err == nil {
		return b.gw.Whisper(ctx, inv.UserID,
			fmt.Sprintf("You're already linked to the speedrun.com account '%s'.", existing.SrcUsername))
	} else if !errors.Is(err, model.ErrLinkNotFound) {
		return err
	}

	profile, err := b.provider.LookupUser(ctx, username)
	if errors.Is(err, rounds.ErrNotFound) {
		return b.gw.Whisper(ctx, inv.UserID,
			fmt.Sprintf("Couldn't find user '%s' on speedrun.com.", username))
	}
	if err != nil {
		b.logger.Error("account lookup failed",
			slog.String("username", username),
			slog.String("error", err.Error()))
		return b.gw.Whisper(ctx, inv.UserID,
			"Something went wrong while looking up that account. Try again later!")
	}

	switch {
	case profile.ChatName == "":
		return b.gw.Whisper(ctx, inv.UserID,
			"Couldn't find a chat account linked to that speedrun.com account.")
	case !profile.ChatVerified:
		return b.gw.Whisper(ctx, inv.UserID,
			fmt.Sprintf("The chat account linked to '%s' is not verified.", profile.Username))
	case !strings.EqualFold(profile.ChatName, inv.UserName):
		return b.gw.Whisper(ctx, inv.UserID,
			fmt.Sprintf("The speedrun.com account '%s' is already linked to the chat account '%s'.", profile.Username, profile.ChatName))
	}

	link := &model.AccountLink{
		UserID:      inv.UserID,
		ChatName:    inv.UserName,
		SrcUsername: profile.Username,
		SrcUserID:   profile.ID,
		ImageURL:    profile.ImageURL,
	}
	if err := b.store.SaveLink(ctx, link); err != nil {
		return fmt.Errorf("save account link: %w", err)
	}

	b.logger.Info("account linked",
		slog.String("user_id", string(inv.UserID)),
		slog.String("src_username", profile.Username))
	return b.gw.Whisper(ctx, inv.UserID,
		fmt.Sprintf("Your chat account '%s' has been successfully linked to your speedrun.com account '%s'.", inv.UserName, profile.Username))
}

func (b *Bot) showLink(ctx context.Context, inv Invocation) error {
	link, err := b.store.GetLink(ctx, inv.UserID)
	if errors.Is(err, model.ErrLinkNotFound) {
		return b.gw.Whisper(ctx, inv.UserID, "You have no linked account right now.")
	}
	if err != nil {
		return err
	}

	unlinkID := model.ControlID(uuid.NewString())
	b.registerTransient(unlinkID, func(ctx context.Context, ev model.ControlActivated) {
		defer b.unregisterTransient(unlinkID)
		if err := b.store.DeleteLink(ctx, inv.UserID); err != nil {
			b.logger.Error("unlink failed",
				slog.String("user_id", string(inv.UserID)),
				slog.String("error", err.Error()))
			_ = b.gw.Whisper(ctx, ev.ActorID, "Something went wrong while unlinking. Try again later!")
			return
		}
		_ = b.gw.Whisper(ctx, ev.ActorID, "Your account has been successfully unlinked.")
	})

	content := fmt.Sprintf(
		"Your chat account is linked with [**%s**](<https://speedrun.com/users/%s>) on speedrun.com.",
		link.SrcUsername, link.SrcUsername)
	return b.gw.WhisperButtons(ctx, inv.UserID, content, []model.ButtonSpec{
		{Label: "Unlink Account", ControlID: unlinkID},
	})
}
