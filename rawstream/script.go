package rawstream

import "github.com/leijurv/jpeg_coef_go/coef"

// BaselineScript returns a single interleaved sequential scan, or one scan
// per component when the interleaved unit would be too large.
func BaselineScript(f *coef.Frame) []coef.Scan {
	all := allComponents(f)
	scan := coef.Scan{Components: all, Ss: 0, Se: coef.DCTSize2 - 1}
	if _, err := coef.NewScanLayout(f, &scan); err == nil {
		return []coef.Scan{scan}
	}
	var script []coef.Scan
	for _, ci := range all {
		script = append(script, coef.Scan{Components: []int{ci}, Ss: 0, Se: coef.DCTSize2 - 1})
	}
	return script
}

// ProgressiveScript returns a successive-approximation script: DC with one
// bit held back, two spectral bands with two bits held back, then
// refinements down to full precision.
func ProgressiveScript(f *coef.Frame) []coef.Scan {
	var script []coef.Scan
	script = append(script, dcScans(f, 0, 1)...)
	script = append(script, acScans(f, 1, 5, 0, 2)...)
	script = append(script, acScans(f, 6, 63, 0, 2)...)
	script = append(script, acScans(f, 1, 63, 2, 1)...)
	script = append(script, dcScans(f, 1, 0)...)
	script = append(script, acScans(f, 1, 63, 1, 0)...)
	return script
}

// SpectralScript returns a script of full-precision scans that only splits
// the spectrum: DC, then a low and a high AC band per component.
func SpectralScript(f *coef.Frame) []coef.Scan {
	var script []coef.Scan
	script = append(script, dcScans(f, 0, 0)...)
	script = append(script, acScans(f, 1, 5, 0, 0)...)
	script = append(script, acScans(f, 6, 63, 0, 0)...)
	return script
}

func allComponents(f *coef.Frame) []int {
	all := make([]int, len(f.Components))
	for i := range all {
		all[i] = i
	}
	return all
}

func dcScans(f *coef.Frame, ah, al int) []coef.Scan {
	scan := coef.Scan{Components: allComponents(f), Ah: ah, Al: al}
	if _, err := coef.NewScanLayout(f, &scan); err == nil {
		return []coef.Scan{scan}
	}
	var script []coef.Scan
	for ci := range f.Components {
		script = append(script, coef.Scan{Components: []int{ci}, Ah: ah, Al: al})
	}
	return script
}

func acScans(f *coef.Frame, ss, se, ah, al int) []coef.Scan {
	var script []coef.Scan
	for ci := range f.Components {
		script = append(script, coef.Scan{Components: []int{ci}, Ss: ss, Se: se, Ah: ah, Al: al})
	}
	return script
}
