package spread

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"spreadgen/internal/cards"
	"spreadgen/internal/placement"
)

var (
	// ErrNoCards reports a build over an empty collection. The returned
	// queue is empty.
	ErrNoCards = errors.New("no cards to render")
	// ErrMultipleFavorites reports more than one favorited card.
	ErrMultipleFavorites = errors.New("more than one favorite card")
)

// Artifact names threaded between commands.
const (
	audioFinal    = "audio_final.wav"
	videoFinal    = "video_final.mp4"
	videoAllCards = "video_allcards.mp4"
)

// Build emits the command chain for assets in their current display order.
func Build(assets []cards.CardAsset, opts Options) (*Queue, error) {
	if opts.ChunkSize < 1 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", opts.ChunkSize)
	}
	if len(assets) == 0 {
		return NewQueue(nil), ErrNoCards
	}

	favorite := -1
	for i, card := range assets {
		if !card.Favorite {
			continue
		}
		if favorite >= 0 {
			return nil, ErrMultipleFavorites
		}
		favorite = i
	}

	plan := NewPlan(len(assets), opts.ChunkSize)
	b := builder{assets: assets, opts: opts, plan: plan, favorite: favorite}

	commands := make([]Command, 0, 2*plan.Total()+2)
	commands = append(commands, b.audioChain()...)
	commands = append(commands, b.videoChain()...)
	if favorite >= 0 {
		commands = append(commands, b.favoriteOverlay())
	}
	commands = append(commands, b.mux())
	return NewQueue(commands), nil
}

type builder struct {
	assets   []cards.CardAsset
	opts     Options
	plan     Plan
	favorite int
}

func (b builder) hasFavorite() bool {
	return b.favorite >= 0
}

func (b builder) audioChain() []Command {
	total := b.plan.Total()
	commands := make([]Command, 0, total)
	for k := range total {
		start, end := b.plan.Bounds(k)
		chunk := b.assets[start:end]

		base := InputRef{Name: "ambiance.wav", Path: b.opts.Template.Ambiance}
		if k > 0 {
			base = InputRef{Name: fmt.Sprintf("audio_%d.wav", k-1)}
		}
		output := audioFinal
		if k < total-1 {
			output = fmt.Sprintf("audio_%d.wav", k)
		}

		inputs := []InputRef{base}
		args := []string{"-i", base.Name}
		weights := []string{formatNumber(AccumulatorWeight)}
		for i, card := range chunk {
			name := fmt.Sprintf("card_%d.mp4", start+i)
			inputs = append(inputs, InputRef{Name: name, Path: card.ClipPath()})
			args = append(args, "-i", name)
			weights = append(weights, formatNumber(b.weight(card)))
		}
		filter := fmt.Sprintf("amix=inputs=%d:duration=first:weights='%s'", len(chunk)+1, strings.Join(weights, " "))
		args = append(args, "-vn", "-filter_complex", filter, output)

		commands = append(commands, Command{
			Title:  fmt.Sprintf("Audio mixing (%d/%d)", k+1, total),
			Inputs: inputs,
			Args:   args,
		})
	}
	return commands
}

// weight returns the mix weight for one card.
func (b builder) weight(card cards.CardAsset) float64 {
	switch {
	case !b.hasFavorite():
		return NeutralWeight
	case card.Favorite:
		return FavoriteWeight
	default:
		return BackgroundWeight
	}
}

func (b builder) videoChain() []Command {
	reversed := slices.Clone(b.assets)
	slices.Reverse(reversed)

	total := b.plan.Total()
	commands := make([]Command, 0, total)
	for k := range total {
		start, end := b.plan.Bounds(k)
		grid := make([]cards.CardAsset, 0, end-start)
		for _, card := range reversed[start:end] {
			if !card.Favorite {
				grid = append(grid, card)
			}
		}

		base := InputRef{Name: "bg.png", Path: b.opts.Template.Background}
		if k > 0 {
			base = InputRef{Name: fmt.Sprintf("video_%d.mp4", k-1)}
		}
		output := videoFinal
		switch {
		case k < total-1:
			output = fmt.Sprintf("video_%d.mp4", k)
		case b.hasFavorite():
			output = videoAllCards
		}

		inputs := []InputRef{base}
		args := []string{"-i", base.Name}
		for i, card := range grid {
			name := fmt.Sprintf("card_%d.mp4", start+i)
			inputs = append(inputs, InputRef{Name: name, Path: card.ClipPath()})
			args = append(args, "-i", name)
		}
		args = append(args, "-an", "-filter_complex", gridFilter(grid), "-map", "[cmplt]", output)

		commands = append(commands, Command{
			Title:  fmt.Sprintf("Video rendering (%d/%d)", k+1, total),
			Inputs: inputs,
			Args:   args,
		})
	}
	return commands
}

// gridFilter scales and rotates each card, then overlays them in order onto
// input 0, labelling the result [cmplt]. An empty grid passes input 0 through.
func gridFilter(grid []cards.CardAsset) string {
	if len(grid) == 0 {
		return "[0:v]null[cmplt]"
	}
	var sb strings.Builder
	for i, card := range grid {
		fmt.Fprintf(&sb,
			`[%d:v]format=bgra,scale=%d:%d:flags=neighbor,rotate=%s*PI/180:c=none:ow=hypot\(iw\,ih\):oh=ow:bilinear=1[rc%d];`,
			i+1, placement.CardWidth, placement.CardHeight, formatNumber(card.Position.TemplateRotation()), i)
	}
	sb.WriteString("[0:v]")
	for i, card := range grid {
		x, y := card.Position.TemplateX(), card.Position.TemplateY()
		if i == len(grid)-1 {
			fmt.Fprintf(&sb, "[rc%d]overlay=%d:%d[cmplt]", i, x, y)
			continue
		}
		fmt.Fprintf(&sb, "[rc%d]overlay=%d:%d[oc%d];[oc%d]", i, x, y, i, i)
	}
	return sb.String()
}

func (b builder) favoriteOverlay() Command {
	tmpl := b.opts.Template
	fav := b.assets[b.favorite]
	angle := formatNumber(normalizeDegrees(tmpl.FavoriteRotation))
	filter := fmt.Sprintf(
		"[3:v]format=bgra,rotate=%[1]s*PI/180:c=none:ow=rotw(%[1]s*PI/180):oh=roth(%[1]s*PI/180):bilinear=0[fav];"+
			"[0:v][1:v]overlay=0:0[f1];[f1][fav]overlay=%[2]d:%[3]d[f2];[f2][2:v]overlay=0:0[final]",
		angle, tmpl.FavoriteX, tmpl.FavoriteY)
	return Command{
		Title: "Overlay Favorite Card",
		Inputs: []InputRef{
			{Name: videoAllCards},
			{Name: "h1.png", Path: tmpl.HighlightUnder},
			{Name: "h2.png", Path: tmpl.HighlightOver},
			{Name: "fav.mp4", Path: fav.ClipPath()},
		},
		Args: []string{
			"-i", videoAllCards,
			"-i", "h1.png",
			"-i", "h2.png",
			"-i", "fav.mp4",
			"-an",
			"-filter_complex", filter,
			"-map", "[final]",
			videoFinal,
		},
	}
}

func (b builder) mux() Command {
	return Command{
		Title:  "Combine Audio and Video streams",
		Inputs: []InputRef{{Name: videoFinal}, {Name: audioFinal}},
		Args: []string{
			"-i", videoFinal,
			"-i", audioFinal,
			"-c:v", b.opts.VideoCodec,
			"-crf", strconv.Itoa(b.opts.CRF),
			"-map", "0:v:0",
			"-map", "1:a:0",
			ResultName,
		},
	}
}

// normalizeDegrees maps an angle into [0, 360).
func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
