package advisor

import (
	"fmt"
	"strings"

	"github.com/seshat-edu/seshat-backend/internal/model"
)

func planPrompt(months int, focusAreas []string) string {
	return fmt.Sprintf(`Aja como um tutor especialista em vestibulares (ENEM/Vestibular).
Crie um cronograma de estudos focado para um aluno que tem %d meses até a prova.
As áreas de foco principais são: %s.

Regras OBRIGATÓRIAS:
1. Crie exatamente %d matérias principais baseadas no foco.
2. Para cada matéria, crie exatamente %d tópicos fundamentais que cabem nesse tempo.
3. Sua resposta deve ser APENAS um JSON válido, sem markdown, sem aspas triplas, sem texto antes ou depois.

O formato do JSON deve ser estritamente este:
{
  "nome_plano": "Nome Criativo do Plano",
  "materias": [
    {
      "nome": "Nome da Matéria",
      "topicos": ["Tópico 1", "Tópico 2", "Tópico 3"]
    }
  ]
}`,
		months,
		strings.Join(focusAreas, ", "),
		model.MaxMateriasPerCronograma,
		model.MaxTopicosPerMateria,
	)
}

func hintPrompt(q *model.Question) string {
	var opts strings.Builder
	if parsed, err := model.ParseOptions(q.Options); err == nil {
		for _, k := range parsed.Keys {
			fmt.Fprintf(&opts, "%s) %s\n", k, parsed.Texts[k])
		}
	}

	correct, ok := q.OptionText(q.CorrectAnswer)
	if !ok {
		correct = "Desconhecida"
	}

	return fmt.Sprintf(`Você é um tutor inteligente e pedagógico.
Um aluno está com dúvida na seguinte questão:

Enunciado: %q
Opções:
%s
A resposta CORRETA é a opção %s: %q.

SUA TAREFA:
Dê uma dica curta e direta para ajudar o aluno a chegar nessa conclusão sozinho.

REGRAS OBRIGATÓRIAS:
1. JAMAIS revele qual é a letra ou a resposta correta diretamente.
2. Não explique a questão inteira, apenas aponte o caminho.
3. Seja encorajador.
4. Máximo de 3 frases.`,
		q.Text, opts.String(), q.CorrectAnswer, correct,
	)
}
