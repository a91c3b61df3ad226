package meta

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"metahub/internal/domain"
)

// AdAccountInsights fetches aggregate ad performance for the given Graph
// date preset (last_7d, yesterday, ...). Returns nil when the account has no
// rows for the period.
func (c *Client) AdAccountInsights(ctx context.Context, datePreset string) (*domain.MetricsSnapshot, error) {
	params := url.Values{}
	params.Set("fields", "impressions,reach,clicks,spend,cpm,cpc,actions")
	params.Set("date_preset", datePreset)

	var res struct {
		Data []struct {
			Impressions string `json:"impressions"`
			Reach       string `json:"reach"`
			Clicks      string `json:"clicks"`
			Spend       string `json:"spend"`
			CPM         string `json:"cpm"`
			CPC         string `json:"cpc"`
		} `json:"data"`
	}
	if _, err := c.get(ctx, "/"+c.AdAccountID+"/insights", params, &res); err != nil {
		return nil, err
	}
	if len(res.Data) == 0 {
		return nil, nil
	}

	row := res.Data[0]
	return &domain.MetricsSnapshot{
		Impressions: atoiOrZero(row.Impressions),
		Reach:       atoiOrZero(row.Reach),
		Clicks:      atoiOrZero(row.Clicks),
		Spend:       atofOrZero(row.Spend),
		CPM:         atofOrZero(row.CPM),
		CPC:         atofOrZero(row.CPC),
		Platform:    "Facebook Ads",
		CollectedAt: time.Now().UTC(),
	}, nil
}

// PageInsight is one page-level metric series.
type PageInsight struct {
	Name   string `json:"name"`
	Period string `json:"period"`
	Values []struct {
		Value   float64 `json:"value"`
		EndTime string  `json:"end_time"`
	} `json:"values"`
}

func (c *Client) PageInsights(ctx context.Context) ([]PageInsight, error) {
	params := url.Values{}
	params.Set("metric", "page_impressions,page_engaged_users,page_fans")
	params.Set("period", "day")

	var res struct {
		Data []PageInsight `json:"data"`
	}
	if _, err := c.get(ctx, "/"+c.PageID+"/insights", params, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

// MetaScheduledPost is a post scheduled on the platform itself, outside the
// hub's own queue.
type MetaScheduledPost struct {
	ID           string `json:"id"`
	Content      string `json:"content"`
	Image        string `json:"image,omitempty"`
	ScheduledFor int64  `json:"scheduledFor"`
	Platform     string `json:"platform"`
	Source       string `json:"source"`
}

// ScheduledFromMeta lists posts scheduled directly on the Facebook page.
func (c *Client) ScheduledFromMeta(ctx context.Context) ([]MetaScheduledPost, error) {
	params := url.Values{}
	params.Set("fields", "id,message,created_time,scheduled_publish_time,story,full_picture")

	var res struct {
		Data []struct {
			ID                   string `json:"id"`
			Message              string `json:"message"`
			FullPicture          string `json:"full_picture"`
			ScheduledPublishTime int64  `json:"scheduled_publish_time"`
		} `json:"data"`
	}
	if _, err := c.get(ctx, "/"+c.PageID+"/scheduled_posts", params, &res); err != nil {
		return nil, err
	}

	posts := make([]MetaScheduledPost, 0, len(res.Data))
	for _, p := range res.Data {
		posts = append(posts, MetaScheduledPost{
			ID:           p.ID,
			Content:      p.Message,
			Image:        p.FullPicture,
			ScheduledFor: p.ScheduledPublishTime,
			Platform:     "Facebook",
			Source:       "meta",
		})
	}
	return posts, nil
}

// pagePost is the engagement view of a published page post.
type pagePost struct {
	ID          string `json:"id"`
	CreatedTime string `json:"created_time"`
	Shares      *struct {
		Count int `json:"count"`
	} `json:"shares"`
	Reactions *summaryHolder `json:"reactions"`
	Comments  *summaryHolder `json:"comments"`
}

type summaryHolder struct {
	Summary struct {
		TotalCount int `json:"total_count"`
	} `json:"summary"`
}

type HourSlot struct {
	Time       string `json:"time"`
	Engagement int    `json:"engagement"`
	Posts      int    `json:"posts"`
}

type DaySlot struct {
	Day           string `json:"day"`
	AvgEngagement int    `json:"avgEngagement"`
	PostCount     int    `json:"postCount"`
}

type PostingTimes struct {
	AnalyzedPosts  int        `json:"analyzedPosts"`
	BestHours      []HourSlot `json:"bestHours"`
	BestDays       []DaySlot  `json:"bestDays"`
	Recommendation string     `json:"recommendation"`
}

// BestPostingTimes scores recent page posts by engagement (comments weigh
// double, shares triple) and aggregates by hour of day and weekday.
func (c *Client) BestPostingTimes(ctx context.Context) (PostingTimes, error) {
	params := url.Values{}
	params.Set("fields", "id,message,created_time,shares,reactions.summary(true),comments.summary(true)")
	params.Set("limit", "100")

	var res struct {
		Data []pagePost `json:"data"`
	}
	if _, err := c.get(ctx, "/"+c.PageID+"/posts", params, &res); err != nil {
		return PostingTimes{}, err
	}
	return analyzePostingTimes(res.Data), nil
}

func analyzePostingTimes(posts []pagePost) PostingTimes {
	type bucket struct {
		total int
		count int
	}
	hourly := map[int]*bucket{}
	weekday := map[time.Weekday]*bucket{}

	analyzed := 0
	for _, post := range posts {
		created, err := time.Parse("2006-01-02T15:04:05-0700", post.CreatedTime)
		if err != nil {
			created, err = time.Parse(time.RFC3339, post.CreatedTime)
			if err != nil {
				continue
			}
		}
		analyzed++

		engagement := 0
		if post.Reactions != nil {
			engagement += post.Reactions.Summary.TotalCount
		}
		if post.Comments != nil {
			engagement += post.Comments.Summary.TotalCount * 2
		}
		if post.Shares != nil {
			engagement += post.Shares.Count * 3
		}

		h := created.Hour()
		if hourly[h] == nil {
			hourly[h] = &bucket{}
		}
		hourly[h].total += engagement
		hourly[h].count++

		d := created.Weekday()
		if weekday[d] == nil {
			weekday[d] = &bucket{}
		}
		weekday[d].total += engagement
		weekday[d].count++
	}

	hours := make([]HourSlot, 0, len(hourly))
	for h, b := range hourly {
		hours = append(hours, HourSlot{
			Time:       fmt.Sprintf("%02d:00", h),
			Engagement: b.total / b.count,
			Posts:      b.count,
		})
	}
	sort.Slice(hours, func(i, j int) bool {
		if hours[i].Engagement != hours[j].Engagement {
			return hours[i].Engagement > hours[j].Engagement
		}
		return hours[i].Time < hours[j].Time
	})
	if len(hours) > 5 {
		hours = hours[:5]
	}

	days := make([]DaySlot, 0, len(weekday))
	for d, b := range weekday {
		days = append(days, DaySlot{
			Day:           d.String(),
			AvgEngagement: b.total / b.count,
			PostCount:     b.count,
		})
	}
	sort.Slice(days, func(i, j int) bool {
		if days[i].AvgEngagement != days[j].AvgEngagement {
			return days[i].AvgEngagement > days[j].AvgEngagement
		}
		return days[i].Day < days[j].Day
	})

	rec := "Publish posts on your page to gather engagement data"
	if len(hours) > 0 {
		top := hours
		if len(top) > 3 {
			top = top[:3]
		}
		rec = "Best posting times: "
		for i, h := range top {
			if i > 0 {
				rec += ", "
			}
			rec += h.Time
		}
	}

	return PostingTimes{
		AnalyzedPosts:  analyzed,
		BestHours:      hours,
		BestDays:       days,
		Recommendation: rec,
	}
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atofOrZero(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
