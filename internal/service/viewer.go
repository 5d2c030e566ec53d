// Package service contains the application's business logic.
package service

import (
	"context"
	"log/slog"
	"time"

	"agora/internal/models"
)

// Viewer identifies who is looking at a piece of content.
// A zero Viewer is an unauthenticated reader.
type Viewer struct {
	ID            uint
	Authenticated bool
	IsStaff       bool
}

// AuthorRef is the author block attached to rendered content.
// For anonymous content seen by a non-privileged viewer, ID is nil and the
// name fields read "Anonymous".
type AuthorRef struct {
	ID          *uint  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// PostItem is a post rendered for a specific viewer.
type PostItem struct {
	ID            uint          `json:"id"`
	Author        AuthorRef     `json:"author"`
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	IsAnonymous   bool          `json:"is_anonymous"`
	CircleID      *uint         `json:"circle_id"`
	ImageURL      string        `json:"image_url,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	LikesCount    int64         `json:"likes_count"`
	LikedByViewer bool          `json:"liked_by_viewer"`
	Comments      []CommentItem `json:"comments,omitempty"`
}

// CommentItem is a comment rendered for a specific viewer, with direct replies.
type CommentItem struct {
	ID          uint          `json:"id"`
	Author      AuthorRef     `json:"author"`
	PostID      uint          `json:"post_id"`
	Content     string        `json:"content"`
	IsAnonymous bool          `json:"is_anonymous"`
	CreatedAt   time.Time     `json:"created_at"`
	ParentID    *uint         `json:"parent_id"`
	Replies     []CommentItem `json:"replies"`
}

// MessageItem is a circle message rendered for a specific viewer.
type MessageItem struct {
	ID          uint      `json:"id"`
	Author      AuthorRef `json:"author"`
	CircleID    uint      `json:"circle_id"`
	Content     string    `json:"content"`
	IsAnonymous bool      `json:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReportRow is a moderation report rendered for the admin queue.
type ReportRow struct {
	ID               uint                    `json:"id"`
	ReporterUsername string                  `json:"reporter_username"`
	ContentType      models.ReportTargetType `json:"content_type"`
	ObjectID         uint                    `json:"object_id"`
	Reason           string                  `json:"reason"`
	Status           models.ReportStatus     `json:"status"`
	CreatedAt        time.Time               `json:"created_at"`
}

// Renderer applies anonymity redaction and display-name resolution.
// AuditStaffReveal, when set, is invoked every time a staff viewer sees
// through an anonymous author.
type Renderer struct {
	AuditStaffReveal func(ctx context.Context, viewerID uint, contentKind string, contentID uint)
}

// NewRenderer returns a Renderer. auditEnabled gates staff see-through logging.
func NewRenderer(auditEnabled func() bool) *Renderer {
	r := &Renderer{}
	r.AuditStaffReveal = func(ctx context.Context, viewerID uint, contentKind string, contentID uint) {
		if auditEnabled == nil || !auditEnabled() {
			return
		}
		slog.InfoContext(ctx, "staff viewed anonymous author",
			slog.Any("staff_user_id", viewerID),
			slog.String("content_kind", contentKind),
			slog.Any("content_id", contentID),
		)
	}
	return r
}

// authorFor resolves the author block for one item. The author's identity is
// hidden from everyone except the author themselves and staff.
func (r *Renderer) authorFor(ctx context.Context, v Viewer, author *models.User, authorID uint, anonymous bool, kind string, itemID uint) AuthorRef {
	isOwner := v.Authenticated && v.ID == authorID

	if anonymous && !isOwner {
		if !v.IsStaff {
			return AuthorRef{ID: nil, Username: "Anonymous", DisplayName: "Anonymous"}
		}
		if r.AuditStaffReveal != nil {
			r.AuditStaffReveal(ctx, v.ID, kind, itemID)
		}
	}

	ref := AuthorRef{ID: &authorID}
	if author != nil {
		ref.Username = author.Username
		ref.DisplayName = author.PublicName()
	}
	return ref
}

// RenderPost renders a post for the viewer. Comments, if any, are rendered
// separately via RenderComments and attached by the caller.
func (r *Renderer) RenderPost(ctx context.Context, v Viewer, post *models.Post) PostItem {
	return PostItem{
		ID:            post.ID,
		Author:        r.authorFor(ctx, v, &post.User, post.UserID, post.IsAnonymous, "post", post.ID),
		Title:         post.Title,
		Content:       post.Content,
		IsAnonymous:   post.IsAnonymous,
		CircleID:      post.CircleID,
		ImageURL:      post.ImageURL,
		CreatedAt:     post.CreatedAt,
		LikesCount:    int64(post.LikesCount),
		LikedByViewer: post.Liked,
	}
}

// RenderPosts renders a feed page.
func (r *Renderer) RenderPosts(ctx context.Context, v Viewer, posts []*models.Post) []PostItem {
	items := make([]PostItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, r.RenderPost(ctx, v, p))
	}
	return items
}

// RenderComments presents a post's comments two levels deep: top-level
// comments newest-first, each carrying its replies newest-first. Reply chains
// deeper than one level keep their stored parent_id but are flattened into
// the top-level comment's reply list. The input is expected oldest-first
// (repository order); every node is redacted independently.
func (r *Renderer) RenderComments(ctx context.Context, v Viewer, comments []*models.Comment) []CommentItem {
	arena := make(map[uint]*CommentItem, len(comments))
	parentOf := make(map[uint]*uint, len(comments))
	var topLevel []*CommentItem

	for _, c := range comments {
		item := &CommentItem{
			ID:          c.ID,
			Author:      r.authorFor(ctx, v, &c.User, c.UserID, c.IsAnonymous, "comment", c.ID),
			PostID:      c.PostID,
			Content:     c.Content,
			IsAnonymous: c.IsAnonymous,
			CreatedAt:   c.CreatedAt,
			ParentID:    c.ParentID,
			Replies:     []CommentItem{},
		}
		arena[c.ID] = item
		parentOf[c.ID] = c.ParentID
		if c.ParentID == nil {
			topLevel = append(topLevel, item)
		}
	}

	// Attach every reply to its top-level ancestor. Orphaned branches
	// (ancestor hard-deleted) are dropped rather than promoted.
	for _, c := range comments {
		if c.ParentID == nil {
			continue
		}
		if root := topAncestor(arena, parentOf, *c.ParentID); root != nil {
			root.Replies = append(root.Replies, *arena[c.ID])
		}
	}

	items := make([]CommentItem, 0, len(topLevel))
	for i := len(topLevel) - 1; i >= 0; i-- {
		node := *topLevel[i]
		reverseReplies(node.Replies)
		items = append(items, node)
	}
	return items
}

// topAncestor walks the parent chain up to the top-level comment. Returns nil
// when the chain leaves the loaded set. The step bound guards against corrupt
// parent cycles.
func topAncestor(arena map[uint]*CommentItem, parentOf map[uint]*uint, id uint) *CommentItem {
	for range len(parentOf) + 1 {
		pid, ok := parentOf[id]
		if !ok {
			return nil
		}
		if pid == nil {
			return arena[id]
		}
		id = *pid
	}
	return nil
}

func reverseReplies(replies []CommentItem) {
	for i, j := 0, len(replies)-1; i < j; i, j = i+1, j-1 {
		replies[i], replies[j] = replies[j], replies[i]
	}
}

// RenderMessage renders a circle message for the viewer.
func (r *Renderer) RenderMessage(ctx context.Context, v Viewer, msg *models.Message) MessageItem {
	return MessageItem{
		ID:          msg.ID,
		Author:      r.authorFor(ctx, v, &msg.User, msg.UserID, msg.IsAnonymous, "message", msg.ID),
		CircleID:    msg.CircleID,
		Content:     msg.Content,
		IsAnonymous: msg.IsAnonymous,
		CreatedAt:   msg.CreatedAt,
	}
}

// RenderMessages renders a message page.
func (r *Renderer) RenderMessages(ctx context.Context, v Viewer, msgs []*models.Message) []MessageItem {
	items := make([]MessageItem, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, r.RenderMessage(ctx, v, m))
	}
	return items
}

// RenderReports renders the admin moderation queue. Reporter identity is never
// redacted here; the queue is staff-only.
func (r *Renderer) RenderReports(reports []*models.Report) []ReportRow {
	rows := make([]ReportRow, 0, len(reports))
	for _, rep := range reports {
		row := ReportRow{
			ID:          rep.ID,
			ContentType: rep.TargetType,
			ObjectID:    rep.TargetID,
			Reason:      rep.Reason,
			Status:      rep.Status,
			CreatedAt:   rep.CreatedAt,
		}
		if rep.Reporter != nil {
			row.ReporterUsername = rep.Reporter.Username
		}
		rows = append(rows, row)
	}
	return rows
}
