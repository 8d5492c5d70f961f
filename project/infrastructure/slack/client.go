package slack

import (
	"context"
	"fmt"

	"slack-data-bot/project/domain"

	"github.com/slack-go/slack"
)

// Client は service.SlackPort の Slack SDK 実装です
type Client struct {
	api *slack.Client
}

// NewClient は Slack クライアントを初期化します
func NewClient(botToken string) *Client {
	return &Client{api: slack.New(botToken)}
}

// PostEphemeralText はユーザーにだけ見えるテキストメッセージを投稿します
// チャンネルが不明な場合はユーザーとのDMへ投稿します
func (c *Client) PostEphemeralText(ctx context.Context, channelID, userID, text string) error {
	// チャンネル文脈がない（または自分自身のDM）場合は chat.postMessage で
	// ユーザー宛に直接投稿する
	if channelID == "" || channelID == userID {
		_, _, err := c.api.PostMessageContext(ctx, userID, slack.MsgOptionText(text, false))
		if err != nil {
			return fmt.Errorf("slack: DM 投稿失敗 (user=%s): %w", userID, err)
		}
		return nil
	}

	if _, err := c.api.PostEphemeralContext(ctx, channelID, userID, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("slack: エフェメラル投稿失敗 (channel=%s, user=%s): %w", channelID, userID, err)
	}
	return nil
}

// PostResourceList はリソース一覧を Block Kit 形式で投稿します
func (c *Client) PostResourceList(ctx context.Context, channelID, userID string, kind domain.ResourceKind, items []domain.ResourceInfo) error {
	blocks := BuildResourceListBlocks(kind, items)
	return c.postBlocks(ctx, channelID, userID, fmt.Sprintf("Available %s files", kind), blocks)
}

// PostResourceData はリソースのデータを Refresh / Update Cell ボタン付きで投稿します
func (c *Client) PostResourceData(ctx context.Context, channelID, userID string, ref domain.ResourceRef, rows [][]string) error {
	blocks, err := BuildDataBlocks(ref, rows)
	if err != nil {
		return err
	}
	return c.postBlocks(ctx, channelID, userID, fmt.Sprintf("Data from %s", ref.Kind), blocks)
}

// OpenCreateModal はファイル作成モーダルを開きます
func (c *Client) OpenCreateModal(ctx context.Context, triggerID string, kind domain.ResourceKind) error {
	view := BuildCreateModal(kind)
	if _, err := c.api.OpenViewContext(ctx, triggerID, view); err != nil {
		return fmt.Errorf("slack: 作成モーダルのオープン失敗 (kind=%s): %w", kind, err)
	}
	return nil
}

// OpenUpdateModal はセル更新モーダルを開きます
func (c *Client) OpenUpdateModal(ctx context.Context, triggerID string, ref domain.ResourceRef) error {
	view, err := BuildUpdateModal(ref)
	if err != nil {
		return err
	}
	if _, err := c.api.OpenViewContext(ctx, triggerID, view); err != nil {
		return fmt.Errorf("slack: 更新モーダルのオープン失敗 (kind=%s, id=%s): %w", ref.Kind, ref.ID, err)
	}
	return nil
}

// postBlocks は Block Kit メッセージをエフェメラル投稿します
func (c *Client) postBlocks(ctx context.Context, channelID, userID, fallback string, blocks []slack.Block) error {
	opts := []slack.MsgOption{
		slack.MsgOptionText(fallback, false),
		slack.MsgOptionBlocks(blocks...),
	}

	if channelID == "" || channelID == userID {
		_, _, err := c.api.PostMessageContext(ctx, userID, opts...)
		if err != nil {
			return fmt.Errorf("slack: DM ブロック投稿失敗 (user=%s): %w", userID, err)
		}
		return nil
	}

	if _, err := c.api.PostEphemeralContext(ctx, channelID, userID, opts...); err != nil {
		return fmt.Errorf("slack: エフェメラルブロック投稿失敗 (channel=%s, user=%s): %w", channelID, userID, err)
	}
	return nil
}
