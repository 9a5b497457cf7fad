package clients

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"

	"GoACE/app/cycle"
	"GoACE/app/utils"
)

// Discord caps messages at 2000 chars; leave room for the code fence.
const discordMessageLimit = 1900

var _ Interface = &DiscordClient{}

type DiscordClient struct {
	Client
	session   *discordgo.Session
	channelID string
	admin     string
	audit     *utils.AuditLogger
}

type discordSettings struct {
	ChannelID string `json:"channel_id"`
	Admin     string `json:"admin"`
}

func NewDiscordClient(options map[string]string) *DiscordClient {
	token := os.Getenv("DISCORD_TOKEN")

	if token == "" {
		return nil
	}

	settings, err := utils.CastAny[discordSettings](options)
	if err != nil || settings == nil {
		settings = &discordSettings{}
	}
	if settings.ChannelID == "" {
		settings.ChannelID = os.Getenv("DISCORD_CHANNEL_ID")
	}
	if settings.Admin == "" {
		settings.Admin = os.Getenv("DISCORD_ADMIN")
	}

	session, _ := discordgo.New("Bot " + token)
	dc := &DiscordClient{
		session:   session,
		channelID: settings.ChannelID,
		admin:     settings.Admin,
	}

	session.AddHandler(dc.onMessageCreate)
	session.Identify.Intents = discordgo.IntentsGuildMessages

	return dc
}

// AttachAudit lets failure notifications carry the last audit lines.
func (c *DiscordClient) AttachAudit(audit *utils.AuditLogger) {
	c.audit = audit
}

func (c *DiscordClient) Subscribe(ct *cycle.Controller) {
	c.controller = ct
	ct.OnCycleComplete(c.onCycleComplete)
	c.Open()
}

func (c *DiscordClient) Open() error {
	if err := c.session.Open(); err != nil {
		return err
	}
	log.Println("Discord client started. Listening for cycle commands...")
	return nil
}

func (c *DiscordClient) Close() error {
	return c.session.Close()
}

func (c *DiscordClient) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}
	if c.admin != "" && m.Author.ID != c.admin {
		return
	}
	if !strings.HasPrefix(m.Content, "!cycle") {
		return
	}

	parts := strings.Fields(m.Content)
	if len(parts) < 2 {
		s.ChannelMessageSend(m.ChannelID, "Usage: !cycle run <task> | !cycle cancel")
		return
	}

	var msg string
	switch parts[1] {
	case "run":
		task := strings.Join(parts[2:], " ")
		if task == "" {
			msg = "Usage: !cycle run <task>"
			break
		}
		c.controller.QueueEvent(cycle.Event{
			Task:        task,
			HandlerFunc: cycle.EventsHandlerFuncDefault[cycle.NewCycle],
		})
		msg = "New cycle queued: " + task
	case "cancel":
		c.controller.QueueEvent(cycle.Event{
			HandlerFunc: cycle.EventsHandlerFuncDefault[cycle.CancelCycle],
		})
		msg = "Active cycle cancelled."
	default:
		msg = "Unknown cycle command. Use: run | cancel"
	}
	s.ChannelMessageSend(m.ChannelID, msg)
}

func (c *DiscordClient) onCycleComplete(rec *cycle.Record, err error) {
	if c.channelID == "" {
		return
	}
	var content string
	if err != nil {
		content = fmt.Sprintf("❌ Cycle failed at %s: %v", rec.State, err)
		if c.audit != nil {
			if lines := c.audit.GetLastLogs(5); len(lines) > 0 {
				logs := utils.Truncate(strings.Join(lines, "\n"), discordMessageLimit-len(content))
				content += fmt.Sprintf("\n```\n%s\n```", logs)
			}
		}
	} else {
		content = fmt.Sprintf("```\n%s```", utils.Truncate(rec.RenderTree(), discordMessageLimit))
	}
	if sendErr := c.SendMessage(c.channelID, content); sendErr != nil {
		log.Printf("⚠️ Error posting cycle summary: %v", sendErr)
	}
}

func (c *DiscordClient) SendMessage(channelID, content string) error {
	if channelID == "" {
		return fmt.Errorf("channelID is empty")
	}
	if _, err := c.session.ChannelMessageSend(channelID, content); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
