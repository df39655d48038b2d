package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

var (
	jsonLDRe    = regexp.MustCompile(`(?is)<script[^>]+type\s*=\s*["']application/ld\+json["'][^>]*>(.*?)</script>`)
	itemscopeRe = regexp.MustCompile(`(?is)<[^>]+itemtype\s*=\s*["'][^"']*schema\.org/(Person|Organization|LocalBusiness)["'][^>]*>(.{0,1000}.{0,1000})`)
	itempropRe  = regexp.MustCompile(`(?is)itemprop\s*=\s*["'](name|email|telephone|jobTitle)["'][^>]*(?:content\s*=\s*["']([^"']+)["'][^>]*)?>([^<]*)`)
)

// extractStructured pulls contact signals out of JSON-LD blocks and
// schema.org microdata. Structured markup is the highest evidence tier and
// bypasses the plain-text heuristics entirely.
func extractStructured(page model.FetchedPage) []model.ContactSignal {
	var signals []model.ContactSignal
	signals = append(signals, extractJSONLD(page)...)
	signals = append(signals, extractMicrodata(page)...)
	return signals
}

func extractJSONLD(page model.FetchedPage) []model.ContactSignal {
	var signals []model.ContactSignal
	for _, m := range jsonLDRe.FindAllStringSubmatch(page.HTML, -1) {
		var doc any
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &doc); err != nil {
			continue
		}
		signals = append(signals, walkJSONLD(doc, page.URL)...)
	}
	return signals
}

// walkJSONLD descends nodes (including @graph arrays) collecting Person and
// Organization contact fields.
func walkJSONLD(node any, sourceURL string) []model.ContactSignal {
	var signals []model.ContactSignal
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			signals = append(signals, walkJSONLD(item, sourceURL)...)
		}
	case map[string]any:
		signals = append(signals, jsonLDEntity(v, sourceURL)...)
		for _, key := range []string{"@graph", "employee", "employees", "founder", "member"} {
			if child, ok := v[key]; ok {
				signals = append(signals, walkJSONLD(child, sourceURL)...)
			}
		}
	}
	return signals
}

func jsonLDEntity(entity map[string]any, sourceURL string) []model.ContactSignal {
	entityType, _ := entity["@type"].(string)
	isPerson := strings.EqualFold(entityType, "Person")
	isOrg := strings.EqualFold(entityType, "Organization") || strings.EqualFold(entityType, "LocalBusiness")
	if !isPerson && !isOrg {
		return nil
	}

	var signals []model.ContactSignal
	structured := func(kind model.SignalKind, value, title string) model.ContactSignal {
		return model.ContactSignal{
			Kind:      kind,
			Value:     value,
			Tier:      model.TierStructured,
			SourceURL: sourceURL,
			Title:     title,
		}
	}

	if isPerson {
		if name, _ := entity["name"].(string); name != "" {
			title, _ := entity["jobTitle"].(string)
			signals = append(signals, structured(model.SignalPersonName, strings.TrimSpace(name), strings.TrimSpace(title)))
		}
	}
	if email, _ := entity["email"].(string); email != "" {
		email = strings.TrimPrefix(strings.TrimSpace(email), "mailto:")
		signals = append(signals, structured(model.SignalEmail, strings.ToLower(email), ""))
	}
	if tel, _ := entity["telephone"].(string); tel != "" {
		if norm := NormalizePhone(tel); norm != "" {
			signals = append(signals, structured(model.SignalPhone, norm, ""))
		}
	}
	return signals
}

// extractMicrodata scans itemscope regions for itemprop name/email/telephone.
// The regex approach only sees the opening 2000 bytes of each region, which
// covers the card-style markup these schemas appear in.
func extractMicrodata(page model.FetchedPage) []model.ContactSignal {
	var signals []model.ContactSignal
	for _, scope := range itemscopeRe.FindAllStringSubmatch(page.HTML, -1) {
		entityType, region := scope[1], scope[2]
		isPerson := strings.EqualFold(entityType, "Person")

		var name, title string
		for _, prop := range itempropRe.FindAllStringSubmatch(region, -1) {
			value := strings.TrimSpace(prop[2])
			if value == "" {
				value = strings.TrimSpace(prop[3])
			}
			if value == "" {
				continue
			}
			switch strings.ToLower(prop[1]) {
			case "name":
				if isPerson {
					name = value
				}
			case "jobtitle":
				title = value
			case "email":
				signals = append(signals, model.ContactSignal{
					Kind:      model.SignalEmail,
					Value:     strings.ToLower(strings.TrimPrefix(value, "mailto:")),
					Tier:      model.TierStructured,
					SourceURL: page.URL,
				})
			case "telephone":
				if norm := NormalizePhone(value); norm != "" {
					signals = append(signals, model.ContactSignal{
						Kind:      model.SignalPhone,
						Value:     norm,
						Tier:      model.TierStructured,
						SourceURL: page.URL,
					})
				}
			}
		}
		if name != "" {
			signals = append(signals, model.ContactSignal{
				Kind:      model.SignalPersonName,
				Value:     name,
				Tier:      model.TierStructured,
				SourceURL: page.URL,
				Title:     title,
			})
		}
	}
	return signals
}
