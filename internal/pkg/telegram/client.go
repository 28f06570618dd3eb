package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://api.telegram.org"

// APIError is a non-ok Bot API response.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api error %d: %s", e.Code, e.Description)
}

type apiResponse struct {
	Ok          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewClient(token string, requestTimeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		baseURL: defaultBaseURL,
		token:   token,
	}
}

func (c *Client) call(ctx context.Context, method string, params url.Values, result interface{}) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if !apiResp.Ok {
		return &APIError{Code: apiResp.ErrorCode, Description: apiResp.Description}
	}

	if result != nil && apiResp.Result != nil {
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("failed to parse result: %w", err)
		}
	}
	return nil
}

// GetUpdates long-polls for new updates after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(timeoutSec))
	params.Set("allowed_updates", `["message","callback_query","chat_join_request"]`)

	// The long poll holds the connection open for timeoutSec; the HTTP
	// client timeout must not cut it short.
	client := &http.Client{Timeout: time.Duration(timeoutSec+10) * time.Second}
	endpoint := fmt.Sprintf("%s/bot%s/getUpdates", c.baseURL, c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call getUpdates: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !apiResp.Ok {
		return nil, &APIError{Code: apiResp.ErrorCode, Description: apiResp.Description}
	}

	var updates []Update
	if err := json.Unmarshal(apiResp.Result, &updates); err != nil {
		return nil, fmt.Errorf("failed to parse updates: %w", err)
	}
	return updates, nil
}

// SendMessage sends an HTML-formatted text message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.SendMessageWithMarkup(ctx, chatID, text, nil)
}

// SendMessageWithMarkup sends a message with an optional reply markup
// (inline keyboard, reply keyboard or keyboard removal).
func (c *Client) SendMessageWithMarkup(ctx context.Context, chatID int64, text string, markup interface{}) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("text", text)
	params.Set("parse_mode", "HTML")

	if markup != nil {
		data, err := json.Marshal(markup)
		if err != nil {
			return fmt.Errorf("failed to marshal reply markup: %w", err)
		}
		params.Set("reply_markup", string(data))
	}

	return c.call(ctx, "sendMessage", params, nil)
}

// SendPhoto re-sends an already uploaded photo by file id.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, markup interface{}) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("photo", fileID)
	params.Set("caption", caption)
	params.Set("parse_mode", "HTML")

	if markup != nil {
		data, err := json.Marshal(markup)
		if err != nil {
			return fmt.Errorf("failed to marshal reply markup: %w", err)
		}
		params.Set("reply_markup", string(data))
	}

	return c.call(ctx, "sendPhoto", params, nil)
}

// EditMessageCaption rewrites a photo caption (used to stamp the admin's
// decision onto the forwarded receipt).
func (c *Client) EditMessageCaption(ctx context.Context, chatID, messageID int64, caption string) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("message_id", strconv.FormatInt(messageID, 10))
	params.Set("caption", caption)
	params.Set("parse_mode", "HTML")

	return c.call(ctx, "editMessageCaption", params, nil)
}

// AnswerCallbackQuery acknowledges an inline button press.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string, showAlert bool) error {
	params := url.Values{}
	params.Set("callback_query_id", callbackID)
	if text != "" {
		params.Set("text", text)
	}
	if showAlert {
		params.Set("show_alert", "true")
	}

	return c.call(ctx, "answerCallbackQuery", params, nil)
}

// CreateInviteLink creates a join-request invite link, so every join goes
// through the access gate even for users holding the link.
func (c *Client) CreateInviteLink(ctx context.Context, chatID int64, name string) (string, error) {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("creates_join_request", "true")
	if name != "" {
		params.Set("name", name)
	}

	var link ChatInviteLink
	if err := c.call(ctx, "createChatInviteLink", params, &link); err != nil {
		return "", err
	}
	return link.InviteLink, nil
}

// BanThenUnban force-removes a user from a chat and immediately lifts the
// ban so they can rejoin after a new payment. A user who is not a member
// any more counts as success.
func (c *Client) BanThenUnban(ctx context.Context, chatID, userID int64) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("user_id", strconv.FormatInt(userID, 10))

	if err := c.call(ctx, "banChatMember", params, nil); err != nil {
		if isMemberAbsent(err) {
			return nil
		}
		return fmt.Errorf("ban failed: %w", err)
	}

	unban := url.Values{}
	unban.Set("chat_id", strconv.FormatInt(chatID, 10))
	unban.Set("user_id", strconv.FormatInt(userID, 10))
	unban.Set("only_if_banned", "true")

	if err := c.call(ctx, "unbanChatMember", unban, nil); err != nil {
		if isMemberAbsent(err) {
			return nil
		}
		return fmt.Errorf("unban failed: %w", err)
	}
	return nil
}

// ApproveJoinRequest accepts a pending chat join request.
func (c *Client) ApproveJoinRequest(ctx context.Context, chatID, userID int64) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("user_id", strconv.FormatInt(userID, 10))

	return c.call(ctx, "approveChatJoinRequest", params, nil)
}

// DeclineJoinRequest rejects a pending chat join request.
func (c *Client) DeclineJoinRequest(ctx context.Context, chatID, userID int64) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("user_id", strconv.FormatInt(userID, 10))

	return c.call(ctx, "declineChatJoinRequest", params, nil)
}

// GetChatMember returns a user's membership status in a chat.
func (c *Client) GetChatMember(ctx context.Context, chatID, userID int64) (*ChatMember, error) {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("user_id", strconv.FormatInt(userID, 10))

	var member ChatMember
	if err := c.call(ctx, "getChatMember", params, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// GetChat fetches chat info, used to resolve a destination title when an
// admin registers a new group.
func (c *Client) GetChat(ctx context.Context, chatID int64) (*Chat, error) {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))

	var chat Chat
	if err := c.call(ctx, "getChat", params, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// Broadcast sends the same message to every listed chat; failures are
// logged per recipient and do not stop the rest.
func (c *Client) Broadcast(ctx context.Context, chatIDs []int64, text string) {
	for _, chatID := range chatIDs {
		if err := c.SendMessage(ctx, chatID, text); err != nil {
			log.Warn().Err(err).Int64("chat_id", chatID).Msg("broadcast delivery failed")
		}
	}
}

// isMemberAbsent detects the Bot API errors returned when banning or
// unbanning someone who already left the chat.
func isMemberAbsent(err error) bool {
	apiErr, ok := err.(*APIError)
	if !ok {
		return false
	}
	desc := strings.ToUpper(apiErr.Description)
	return strings.Contains(desc, "USER_NOT_PARTICIPANT") ||
		strings.Contains(desc, "PARTICIPANT_ID_INVALID") ||
		strings.Contains(desc, "USER NOT FOUND")
}
