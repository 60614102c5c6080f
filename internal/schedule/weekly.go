// Package schedule spreads pending study topics over the days of a week.
package schedule

// Rest marks a day with nothing scheduled.
const Rest = "Descanso"

// DaysPerWeek is the number of slots in a weekly schedule.
const DaysPerWeek = 7

// Weekdays are the slot names, Monday first.
var Weekdays = [DaysPerWeek]string{
	"Segunda-feira",
	"Terça-feira",
	"Quarta-feira",
	"Quinta-feira",
	"Sexta-feira",
	"Sábado",
	"Domingo",
}

// Status tells whether a Week carries days or a sentinel.
type Status string

const (
	StatusOK          Status = "ok"
	StatusNoSubjects  Status = "sem_materias"
	StatusAllComplete Status = "tudo_concluido"
)

// Subject is a named list of pending topics, in study order.
type Subject struct {
	Name    string
	Pending []string
}

// Week is the result of Distribute. Days is only meaningful when Status is StatusOK.
type Week struct {
	Status Status
	Days   [DaysPerWeek]string
}

// Map returns weekday name -> topic (or Rest).
func (w Week) Map() map[string]string {
	if w.Status != StatusOK {
		return nil
	}
	out := make(map[string]string, DaysPerWeek)
	for i, day := range Weekdays {
		out[day] = w.Days[i]
	}
	return out
}

// Distribute assigns pending topics to weekdays round-robin: pass L takes
// the L-th topic of each subject, in subject order, and puts it on the next
// free day. It stops when the week is full or a pass yields nothing.
// The day cursor only moves when a topic is placed.
func Distribute(subjects []Subject) Week {
	if len(subjects) == 0 {
		return Week{Status: StatusNoSubjects}
	}

	pending := 0
	for _, s := range subjects {
		pending += len(s.Pending)
	}
	if pending == 0 {
		return Week{Status: StatusAllComplete}
	}

	week := Week{Status: StatusOK}
	for i := range week.Days {
		week.Days[i] = Rest
	}

	day := 0
	for level := 0; day < DaysPerWeek; level++ {
		placed := false
		for _, s := range subjects {
			if level >= len(s.Pending) {
				continue
			}
			week.Days[day] = s.Pending[level]
			placed = true
			day++
			if day == DaysPerWeek {
				break
			}
		}
		if !placed {
			break
		}
	}

	return week
}
