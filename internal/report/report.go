// Package report defines the unified analysis report returned to callers.
// The report is assembled once per invocation and is immutable afterwards;
// optional sub-reports are pointers so an absent branch serializes as null.
package report

import "time"

// Analysis is the top-level result of analyzing one URL.
// When Error is set, no other field is populated.
type Analysis struct {
	ID          string    `json:"id,omitempty"`
	URL         string    `json:"url,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitzero"`
	SEO         *SEO      `json:"seo,omitempty"`
	Security    *Security `json:"security,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// SEO holds the on-page signals extracted from the fetched document.
type SEO struct {
	Title           Text           `json:"title"`
	MetaDescription Text           `json:"meta_description"`
	Keywords        []string       `json:"keywords"`
	Headings        Headings       `json:"headings"`
	Images          ImageSummary   `json:"images"`
	Links           LinkSummary    `json:"links"`
	MetaTags        MetaTagSummary `json:"meta_tags"`
	Technical       TechnicalSEO   `json:"technical"`
	Preview         Preview        `json:"preview"`
}

// Text is a string signal plus its length in runes.
type Text struct {
	Content string `json:"content"`
	Length  int    `json:"length"`
}

// Headings summarizes the primary heading levels.
type Headings struct {
	H1 Heading `json:"h1"`
	H2 Heading `json:"h2"`
}

// Heading counts elements of one tag level with up to five examples in
// document order.
type Heading struct {
	Count    int      `json:"count"`
	Examples []string `json:"examples,omitempty"`
}

// ImageSummary reports alt-attribute coverage. MissingAltPercent is defined
// as 0 when Total is 0.
type ImageSummary struct {
	Total             int            `json:"total"`
	MissingAlt        int            `json:"missing_alt"`
	MissingAltPercent int            `json:"missing_alt_percent"`
	Examples          []ImageExample `json:"examples,omitempty"`
}

// ImageExample is one offending image (missing or empty alt).
type ImageExample struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// LinkSummary classifies anchors as internal or external. InternalRatio is a
// percentage with one decimal place, "0.0" when Total is 0.
type LinkSummary struct {
	Total         int    `json:"total"`
	Internal      int    `json:"internal"`
	External      int    `json:"external"`
	InternalRatio string `json:"internal_ratio"`
}

// MetaTagSummary covers canonical, robots and Open Graph tags.
type MetaTagSummary struct {
	HasCanonical   bool   `json:"has_canonical"`
	CanonicalURL   string `json:"canonical_url,omitempty"`
	Noindex        bool   `json:"noindex"`
	HasOpenGraph   bool   `json:"has_open_graph"`
	OpenGraphCount int    `json:"open_graph_count"`
}

// TechnicalSEO holds host-level heuristics and robots.txt findings.
type TechnicalSEO struct {
	WWWCanonical      bool      `json:"www_canonical"`
	WWWRecommendation string    `json:"www_recommendation"`
	RobotsTxt         RobotsTxt `json:"robots_txt"`
	StructuredData    int       `json:"structured_data_scripts"`
}

// RobotsTxt reports presence and Disallow directive count.
type RobotsTxt struct {
	Exists        bool `json:"exists"`
	DisallowCount int  `json:"disallow_count"`
}

// Preview approximates how the page renders as a search result.
type Preview struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	TitleTooLong       bool   `json:"title_too_long"`
	DescriptionTooLong bool   `json:"description_too_long"`
}

// Security holds the external posture assessment. The three sub-results are
// populated independently; any of them may be absent without affecting the
// others.
type Security struct {
	Headers         *SecurityHeaders `json:"headers,omitempty"`
	Vulnerabilities *Vulnerabilities `json:"vulnerabilities,omitempty"`
	TLS             *TLSGrade        `json:"tls,omitempty"`
}

// SecurityHeaders captures five response headers from the target root.
// Each field is null when the header was absent or the host unreachable.
type SecurityHeaders struct {
	StrictTransportSecurity *string `json:"strict_transport_security"`
	XFrameOptions           *string `json:"x_frame_options"`
	XXSSProtection          *string `json:"x_xss_protection"`
	ContentSecurityPolicy   *string `json:"content_security_policy"`
	XContentTypeOptions     *string `json:"x_content_type_options"`
}

// Vulnerabilities aggregates the surface scan findings in catalogue order.
type Vulnerabilities struct {
	AdminInterfaces   []AdminProbe    `json:"admin_interfaces"`
	DirectoryIndexing bool            `json:"directory_indexing"`
	SensitiveFiles    []SensitiveFile `json:"sensitive_files"`
}

// AdminProbe records an admin path that answered with a non-404 status.
type AdminProbe struct {
	Path       string `json:"path"`
	Status     int    `json:"status"`
	Accessible bool   `json:"accessible"`
}

// SensitiveFile records a sensitive path that answered 200.
type SensitiveFile struct {
	Path       string `json:"path"`
	Status     int    `json:"status"`
	Accessible bool   `json:"accessible"`
}

// TLSGrade is the terminal result of the external grading assessment.
type TLSGrade struct {
	Endpoints []SSLEndpoint `json:"endpoints"`
}

// SSLEndpoint is one graded server endpoint.
type SSLEndpoint struct {
	IPAddress string           `json:"ip_address"`
	Grade     string           `json:"grade,omitempty"`
	Details   *EndpointDetails `json:"details,omitempty"`
}

// EndpointDetails carries the negotiated TLS parameters for an endpoint.
type EndpointDetails struct {
	Protocols      []string `json:"protocols,omitempty"`
	CertSubject    string   `json:"cert_subject,omitempty"`
	KeyAlgorithm   string   `json:"key_algorithm,omitempty"`
	KeySize        int      `json:"key_size,omitempty"`
	ForwardSecrecy bool     `json:"forward_secrecy"`
}
