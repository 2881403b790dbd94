package cms

import "context"

// Category is a news section (e.g. politics, sports).
type Category struct {
	DocumentID string `json:"documentId"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
}

// Article is the listing shape of a published story. The body stays in the
// CMS; the portal only serves listings.
type Article struct {
	DocumentID  string   `json:"documentId"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Excerpt     string   `json:"excerpt"`
	CoverURL    string   `json:"coverUrl"`
	PublishedAt string   `json:"publishedAt"`
	Category    Category `json:"category"`
}

const listCategoriesQuery = `query {
  categories(sort: "name:asc") {
    documentId
    name
    slug
  }
}`

const listArticlesQuery = `query ($limit: Int!) {
  articles(sort: "publishedAt:desc", pagination: { limit: $limit }) {
    documentId
    title
    slug
    excerpt
    coverUrl
    publishedAt
    category {
      documentId
      name
      slug
    }
  }
}`

const listArticlesByCategoryQuery = `query ($slug: String!, $limit: Int!) {
  articles(
    filters: { category: { slug: { eq: $slug } } }
    sort: "publishedAt:desc"
    pagination: { limit: $limit }
  ) {
    documentId
    title
    slug
    excerpt
    coverUrl
    publishedAt
    category {
      documentId
      name
      slug
    }
  }
}`

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out struct {
		Categories []Category `json:"categories"`
	}
	if err := c.Do(ctx, "list_categories", listCategoriesQuery, nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// ListArticles returns the newest published articles, optionally narrowed
// to one category slug.
func (c *Client) ListArticles(ctx context.Context, categorySlug string, limit int) ([]Article, error) {
	if limit <= 0 {
		limit = 50
	}
	var out struct {
		Articles []Article `json:"articles"`
	}
	query := listArticlesQuery
	variables := map[string]any{"limit": limit}
	if categorySlug != "" {
		query = listArticlesByCategoryQuery
		variables["slug"] = categorySlug
	}
	if err := c.Do(ctx, "list_articles", query, variables, &out); err != nil {
		return nil, err
	}
	return out.Articles, nil
}
