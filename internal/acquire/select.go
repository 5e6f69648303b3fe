package acquire

import "github.com/ytget/yt-grabber/internal/model"

// SelectAudio returns the descriptor with the highest bitrate. On ties the
// later descriptor wins, so the result follows the collaborator's order.
func SelectAudio(descs []model.StreamDescriptor) (model.StreamDescriptor, bool) {
	return maxBy(descs, func(d model.StreamDescriptor) int { return d.Bitrate })
}

// SelectCombined returns the descriptor with the highest quality rank, last wins on ties.
func SelectCombined(descs []model.StreamDescriptor) (model.StreamDescriptor, bool) {
	return maxBy(descs, func(d model.StreamDescriptor) int { return d.Quality })
}

func maxBy(descs []model.StreamDescriptor, key func(model.StreamDescriptor) int) (model.StreamDescriptor, bool) {
	if len(descs) == 0 {
		return model.StreamDescriptor{}, false
	}
	best := descs[0]
	for _, d := range descs[1:] {
		if key(d) >= key(best) {
			best = d
		}
	}
	return best, true
}
