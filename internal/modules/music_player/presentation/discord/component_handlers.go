package discord

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/tunebot/internal/bot"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
	"github.com/sglre6355/tunebot/internal/modules/music_player/infrastructure"
)

// buttonCommands maps player control actions to the commands they run.
var buttonCommands = map[string]domain.CommandKind{
	infrastructure.ActionResume:     domain.CommandResume,
	infrastructure.ActionPause:      domain.CommandPause,
	infrastructure.ActionSkip:       domain.CommandSkip,
	infrastructure.ActionQueueClear: domain.CommandQueueClear,
	infrastructure.ActionShuffle:    domain.CommandShuffle,
	infrastructure.ActionQueueShow:  domain.CommandQueueShow,
}

// HandleComponent handles the player's buttons: the controls under a
// now-playing notice and the queue paginator.
func (h *CommandHandlers) HandleComponent(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	customID := i.MessageComponentData().CustomID

	_, rest, _ := strings.Cut(customID, ":")
	action, _, _ := strings.Cut(rest, ":")

	if action == infrastructure.ActionQueuePage {
		return h.handleQueuePage(i, r, customID)
	}

	kind, ok := buttonCommands[action]
	if !ok {
		slog.Warn("unknown player button", "custom_id", customID)
		return respondError(r, "Unknown button")
	}

	cmd, err := newCommand(i, kind)
	if err != nil {
		return respondError(r, "This button can only be used in a server")
	}
	return h.run(r, cmd)
}

// handleQueuePage re-renders the queue message in place at the requested page.
func (h *CommandHandlers) handleQueuePage(
	i *discordgo.InteractionCreate,
	r bot.Responder,
	customID string,
) error {
	page, err := infrastructure.ParseQueuePageID(customID)
	if err != nil {
		slog.Warn("invalid queue page button", "custom_id", customID, "error", err)
		return respondError(r, "Unknown button")
	}

	cmd, err := newCommand(i, domain.CommandQueueShow)
	if err != nil {
		return respondError(r, "This button can only be used in a server")
	}
	cmd.Page = page

	err = r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		return fmt.Errorf("failed to acknowledge queue page: %w", err)
	}

	return r.Edit(replyEdit(h.dispatch(cmd)))
}
