// Package graph talks to the Microsoft Graph workbook API to pull comments
// for cloud-hosted spreadsheets.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const graphBase = "https://graph.microsoft.com/v1.0"

// Workbook provides comment operations on a cloud-hosted .xlsx file.
type Workbook struct {
	Client *http.Client

	// BaseURL overrides the Graph endpoint; tests point it at a local server.
	BaseURL string
}

// NewWorkbook creates a workbook client with an authenticated HTTP client.
func NewWorkbook(client *http.Client) *Workbook {
	return &Workbook{Client: client, BaseURL: graphBase}
}

// DriveItem identifies a file in OneDrive or SharePoint.
type DriveItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	WebURL  string `json:"webUrl"`
	Size    int64  `json:"size"`
	DriveID string `json:"-"`
}

// Comment is one workbook comment as the Graph API shapes it. The anchor is
// a "SheetName!A1" style reference; replies share the parent's anchor.
type Comment struct {
	ID          string  `json:"id"`
	Content     string  `json:"content"`
	ContentType string  `json:"contentType"`
	Author      string  `json:"-"`
	Anchor      string  `json:"-"`
	Replies     []Reply `json:"-"`
}

// Reply is one reply inside a comment thread.
type Reply struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Author  string `json:"-"`
}

// Worksheet is one sheet of a cloud workbook.
type Worksheet struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type commentsResponse struct {
	Value []struct {
		ID          string `json:"id"`
		Content     string `json:"content"`
		ContentType string `json:"contentType"`
		Location    string `json:"location"`
		Author      struct {
			DisplayName string `json:"displayName"`
		} `json:"author"`
	} `json:"value"`
}

type repliesResponse struct {
	Value []struct {
		ID      string `json:"id"`
		Content string `json:"content"`
		Author  struct {
			DisplayName string `json:"displayName"`
		} `json:"author"`
	} `json:"value"`
}

type worksheetsResponse struct {
	Value []Worksheet `json:"value"`
}

// ResolveItem looks up a drive item by path relative to the user's drive
// root, e.g. "Reports/budget.xlsx".
func (w *Workbook) ResolveItem(ctx context.Context, path string) (*DriveItem, error) {
	endpoint := w.BaseURL + "/me/drive/root:/" + url.PathEscape(strings.Trim(path, "/"))

	body, err := w.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var item DriveItem
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("could not parse drive item: %w", err)
	}
	return &item, nil
}

// ListWorksheets returns the worksheets of a drive item.
func (w *Workbook) ListWorksheets(ctx context.Context, itemID string) ([]Worksheet, error) {
	endpoint := w.BaseURL + "/me/drive/items/" + itemID + "/workbook/worksheets"

	body, err := w.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var result worksheetsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not parse worksheets response: %w", err)
	}
	return result.Value, nil
}

// ListComments returns every comment of a drive item, with replies loaded.
func (w *Workbook) ListComments(ctx context.Context, itemID string) ([]Comment, error) {
	endpoint := w.BaseURL + "/me/drive/items/" + itemID + "/workbook/comments"

	body, err := w.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var result commentsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not parse comments response: %w", err)
	}

	comments := make([]Comment, 0, len(result.Value))
	for _, v := range result.Value {
		c := Comment{
			ID:          v.ID,
			Content:     v.Content,
			ContentType: v.ContentType,
			Author:      v.Author.DisplayName,
			Anchor:      v.Location,
		}
		replies, err := w.listReplies(ctx, itemID, v.ID)
		if err == nil {
			c.Replies = replies
		}
		comments = append(comments, c)
	}
	return comments, nil
}

func (w *Workbook) listReplies(ctx context.Context, itemID, commentID string) ([]Reply, error) {
	endpoint := w.BaseURL + "/me/drive/items/" + itemID + "/workbook/comments/" + commentID + "/replies"

	body, err := w.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var result repliesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not parse replies response: %w", err)
	}

	replies := make([]Reply, 0, len(result.Value))
	for _, v := range result.Value {
		replies = append(replies, Reply{ID: v.ID, Content: v.Content, Author: v.Author.DisplayName})
	}
	return replies, nil
}

func (w *Workbook) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := w.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Graph request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Graph API returned %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// SplitAnchor breaks a "SheetName!A1" anchor into its sheet and cell parts.
// Sheet names containing "!" are quoted by the API; quotes are removed.
func SplitAnchor(anchor string) (sheet, cell string) {
	idx := strings.LastIndex(anchor, "!")
	if idx < 0 {
		return "", anchor
	}
	sheet = strings.Trim(anchor[:idx], "'")
	cell = anchor[idx+1:]
	return sheet, cell
}
