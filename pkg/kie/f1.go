package kie

const epsilon = 1e-6

// FieldStat accumulates true positives and combined misses for one flattened
// field path across a dataset.
type FieldStat struct {
	TotalTP     int     `json:"total_tp"`
	TotalFNorFP int     `json:"total_fn_or_fp"`
	Acc         float64 `json:"acc"`
}

// DocErrors lists the mismatched fields of a single document. Only documents
// with at least one error appear in the report.
type DocErrors struct {
	FP        []Field        `json:"fp"`
	FN        []Field        `json:"fn"`
	TP        []Field        `json:"tp"`
	ErrorNum  int            `json:"error_num"`
	ErrorInfo map[string]int `json:"error_info"`
}

// F1Result is the outcome of scoring one dataset.
type F1Result struct {
	F1        float64
	PerField  map[string]*FieldStat
	PerDoc    map[string]*DocErrors
	TotalTP   int
	TotalFNFP int
}

// CalF1 computes the micro-averaged field F1 over all ground-truth documents.
// Each predicted field pair either consumes one matching answer pair (tp) or
// counts as fp; answer pairs left unconsumed count as fn. Predictions for
// documents absent from the ground truth are ignored. Inputs must already be
// value-normalized; structure normalization and flattening happen here.
func CalF1(preds, answers map[string]any) F1Result {
	result := F1Result{
		PerField: map[string]*FieldStat{},
		PerDoc:   map[string]*DocErrors{},
	}

	for docName, answer := range answers {
		pred := preds[docName]
		predFields := Flatten(NormalizeStructure(pred))
		answerFields := Flatten(NormalizeStructure(answer))

		doc := &DocErrors{}
		for _, field := range predFields {
			stat := result.PerField[field.Path()]
			if stat == nil {
				stat = &FieldStat{}
				result.PerField[field.Path()] = stat
			}
			if idx := indexOf(answerFields, field); idx >= 0 {
				result.TotalTP++
				stat.TotalTP++
				doc.TP = append(doc.TP, field)
				answerFields = append(answerFields[:idx], answerFields[idx+1:]...)
			} else {
				result.TotalFNFP++
				stat.TotalFNorFP++
				doc.FP = append(doc.FP, field)
			}
		}

		result.TotalFNFP += len(answerFields)
		for _, field := range answerFields {
			stat := result.PerField[field.Path()]
			if stat == nil {
				stat = &FieldStat{}
				result.PerField[field.Path()] = stat
			}
			stat.TotalFNorFP++
			doc.FN = append(doc.FN, field)
		}

		if errNum := len(doc.FP) + len(doc.FN); errNum > 0 {
			doc.ErrorNum = errNum
			doc.ErrorInfo = map[string]int{}
			for _, field := range append(append([]Field{}, doc.FN...), doc.FP...) {
				doc.ErrorInfo["counter_"+field.Path()]++
			}
			result.PerDoc[docName] = doc
		}
	}

	for _, stat := range result.PerField {
		stat.Acc = float64(stat.TotalTP) / (float64(stat.TotalTP) + float64(stat.TotalFNorFP)/2 + epsilon)
	}
	result.F1 = float64(result.TotalTP) / (float64(result.TotalTP) + float64(result.TotalFNFP)/2 + epsilon)
	return result
}

func indexOf(fields []Field, target Field) int {
	for i, f := range fields {
		if f == target {
			return i
		}
	}
	return -1
}
