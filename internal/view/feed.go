package view

import (
	"strconv"
	"time"

	"github.com/a-h/templ"
	templruntime "github.com/a-h/templ/runtime"
	"github.com/dustin/go-humanize"
	"github.com/msomdec/recipe-community/internal/domain"
)

// FeedListID is the element the live stream patches.
const FeedListID = "feed-posts"

// PhotoURLFunc maps a storage key to a URL. Empty keys map to the default photo.
type PhotoURLFunc func(key string) string

// FeedList renders the posts of a feed page as the inner HTML of FeedListID.
func FeedList(posts []domain.Post, photoURL PhotoURLFunc, now time.Time) templ.Component {
	return templruntime.GeneratedTemplate(func(in templruntime.GeneratedComponentInput) (err error) {
		w, ctx := in.Writer, in.Context
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		buf, isBuffer := templruntime.GetBuffer(w)
		if !isBuffer {
			defer func() {
				if bufErr := templruntime.ReleaseBuffer(buf); err == nil {
					err = bufErr
				}
			}()
		}
		ctx = templ.InitializeContext(ctx)
		ctx = templ.ClearChildren(ctx)

		if len(posts) == 0 {
			_, err = buf.WriteString(`<p class="feed-empty">No posts yet. Share what you cooked today!</p>`)
			return err
		}
		for i := range posts {
			if err = PostCard(&posts[i], photoURL, now).Render(ctx, buf); err != nil {
				return err
			}
		}
		return nil
	})
}

// PostCard renders a single post.
func PostCard(p *domain.Post, photoURL PhotoURLFunc, now time.Time) templ.Component {
	return templruntime.GeneratedTemplate(func(in templruntime.GeneratedComponentInput) (err error) {
		w, ctx := in.Writer, in.Context
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		buf, isBuffer := templruntime.GetBuffer(w)
		if !isBuffer {
			defer func() {
				if bufErr := templruntime.ReleaseBuffer(buf); err == nil {
					err = bufErr
				}
			}()
		}

		if err = raw(buf, `<article class="post" id="post-`); err != nil {
			return err
		}
		if err = text(buf, strconv.FormatInt(p.ID, 10)); err != nil {
			return err
		}
		if err = raw(buf, `"><header class="post-author"><img class="avatar" alt="" src="`); err != nil {
			return err
		}
		if err = text(buf, photoURL(p.AuthorPhotoKey)); err != nil {
			return err
		}
		if err = raw(buf, `"><a href="`); err != nil {
			return err
		}
		if err = text(buf, string(templ.URL("/users/"+strconv.FormatInt(p.UserID, 10)))); err != nil {
			return err
		}
		if err = raw(buf, `">`); err != nil {
			return err
		}
		if err = text(buf, p.AuthorName); err != nil {
			return err
		}
		if err = raw(buf, `</a><time datetime="`); err != nil {
			return err
		}
		if err = text(buf, p.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
		if err = raw(buf, `">`); err != nil {
			return err
		}
		if err = text(buf, humanize.RelTime(p.CreatedAt, now, "ago", "from now")); err != nil {
			return err
		}
		if err = raw(buf, `</time>`); err != nil {
			return err
		}
		if p.EditedAt != nil {
			if err = raw(buf, `<span class="post-edited">edited</span>`); err != nil {
				return err
			}
		}
		if err = raw(buf, `</header>`); err != nil {
			return err
		}

		if p.Content != "" {
			if err = raw(buf, `<p class="post-content">`); err != nil {
				return err
			}
			if err = text(buf, p.Content); err != nil {
				return err
			}
			if err = raw(buf, `</p>`); err != nil {
				return err
			}
		}
		if p.PhotoKey != "" {
			if err = raw(buf, `<img class="post-photo" alt="" loading="lazy" src="`); err != nil {
				return err
			}
			if err = text(buf, photoURL(p.PhotoKey)); err != nil {
				return err
			}
			if err = raw(buf, `">`); err != nil {
				return err
			}
		}

		if err = raw(buf, `<footer class="post-stats"><span class="likes">`); err != nil {
			return err
		}
		if err = text(buf, plural(p.LikeCount, "like")); err != nil {
			return err
		}
		if err = raw(buf, `</span><span class="comments">`); err != nil {
			return err
		}
		if err = text(buf, plural(p.CommentCount, "comment")); err != nil {
			return err
		}
		return raw(buf, `</span></footer></article>`)
	})
}

// raw writes trusted markup.
func raw(buf *templruntime.Buffer, s string) error {
	_, err := buf.WriteString(s)
	return err
}

// text writes an escaped value.
func text(buf *templruntime.Buffer, s string) error {
	v, err := templ.JoinStringErrs(s)
	if err != nil {
		return err
	}
	_, err = buf.WriteString(templ.EscapeString(v))
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}
