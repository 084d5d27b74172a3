package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/bot"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
	"github.com/sglre6355/tunebot/internal/modules/music_player/infrastructure"
)

// DefaultDispatchTimeout bounds how long an interaction waits for its session.
const DefaultDispatchTimeout = 30 * time.Second

// Embed colors.
const colorError = 0xE74C3C

var errGuildOnly = errors.New("interaction outside a guild")

// CommandDispatcher runs a player event and returns the session's reply.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, event domain.Event) (application.Reply, error)
}

// CommandHandlers turns slash commands and player buttons into player
// commands. Both go through the same dispatcher.
type CommandHandlers struct {
	dispatcher CommandDispatcher
	botName    string
	timeout    time.Duration
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	dispatcher CommandDispatcher,
	botName string,
	timeout time.Duration,
) *CommandHandlers {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	return &CommandHandlers{
		dispatcher: dispatcher,
		botName:    botName,
		timeout:    timeout,
	}
}

// HandlePlay handles the /play command.
func (h *CommandHandlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cmd, err := newCommand(i, domain.CommandPlay)
	if err != nil {
		return respondError(r, "This command can only be used in a server")
	}

	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" {
			cmd.Query = opt.StringValue()
		}
	}

	return h.run(r, cmd)
}

// HandlePause handles the /pause command.
func (h *CommandHandlers) HandlePause(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.runSlash(i, r, domain.CommandPause)
}

// HandleResume handles the /resume command.
func (h *CommandHandlers) HandleResume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.runSlash(i, r, domain.CommandResume)
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.runSlash(i, r, domain.CommandSkip)
}

// HandleShuffle handles the /shuffle command.
func (h *CommandHandlers) HandleShuffle(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.runSlash(i, r, domain.CommandShuffle)
}

// HandleDisconnect handles the /disconnect command.
func (h *CommandHandlers) HandleDisconnect(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.runSlash(i, r, domain.CommandDisconnect)
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return respondError(r, "Invalid subcommand")
	}

	subCmd := options[0]
	switch subCmd.Name {
	case "show":
		cmd, err := newCommand(i, domain.CommandQueueShow)
		if err != nil {
			return respondError(r, "This command can only be used in a server")
		}
		for _, opt := range subCmd.Options {
			if opt.Name == "page" {
				cmd.Page = int(opt.IntValue())
			}
		}
		return h.run(r, cmd)
	case "clear":
		return h.runSlash(i, r, domain.CommandQueueClear)
	default:
		return respondError(r, "Unknown subcommand")
	}
}

func (h *CommandHandlers) runSlash(
	i *discordgo.InteractionCreate,
	r bot.Responder,
	kind domain.CommandKind,
) error {
	cmd, err := newCommand(i, kind)
	if err != nil {
		return respondError(r, "This command can only be used in a server")
	}
	return h.run(r, cmd)
}

// run acknowledges the interaction, dispatches cmd and replaces the
// acknowledgement with the session's reply.
func (h *CommandHandlers) run(r bot.Responder, cmd domain.Command) error {
	err := r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		return fmt.Errorf("failed to acknowledge %s: %w", cmd.Kind, err)
	}

	return r.Edit(replyEdit(h.dispatch(cmd)))
}

// dispatch runs cmd and always returns a reply carrying a notice.
func (h *CommandHandlers) dispatch(cmd domain.Command) application.Reply {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	reply, err := h.dispatcher.Dispatch(ctx, cmd)
	if err != nil && reply.Notice.Title == "" {
		reply.Notice = application.NoticeForError(err, application.NoticeContext{BotName: h.botName})
	}
	return reply
}

// newCommand builds the player command for an interaction.
func newCommand(i *discordgo.InteractionCreate, kind domain.CommandKind) (domain.Command, error) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return domain.Command{}, errGuildOnly
	}

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return domain.Command{}, fmt.Errorf("invalid guild ID: %w", err)
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return domain.Command{}, fmt.Errorf("invalid user ID: %w", err)
	}
	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return domain.Command{}, fmt.Errorf("invalid channel ID: %w", err)
	}

	return domain.Command{
		GuildID:       guildID,
		UserID:        userID,
		UserMention:   i.Member.User.Mention(),
		TextChannelID: channelID,
		Kind:          kind,
	}, nil
}

// replyEdit renders a reply. Stale buttons are removed unless the reply is a
// queue page with navigation.
func replyEdit(reply application.Reply) *discordgo.WebhookEdit {
	embeds := []*discordgo.MessageEmbed{infrastructure.RenderEmbed(reply.Notice)}

	components := []discordgo.MessageComponent{}
	if reply.Page != nil {
		if nav := infrastructure.QueuePaginator(*reply.Page); nav != nil {
			components = nav
		}
	}

	return &discordgo.WebhookEdit{
		Embeds:     &embeds,
		Components: &components,
	}
}

func respondError(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Error",
					Description: message,
					Color:       colorError,
				},
			},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}
