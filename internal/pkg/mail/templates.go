package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

// Transactional email templates, Portuguese-facing like the client app.

var verificationHTMLTmpl = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="UTF-8"><title>Código de Verificação - GymSync</title></head>
<body style="font-family: 'Segoe UI', Tahoma, sans-serif; background-color: #f4f4f4; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 12px; overflow: hidden;">
    <div style="background: #1a1a1a; padding: 40px 20px; text-align: center;">
      <div style="font-size: 32px; font-weight: bold; color: #ffffff; letter-spacing: 2px;">GYMSYNC</div>
    </div>
    <div style="padding: 40px 30px;">
      <div style="font-size: 18px; color: #333333;">Olá{{if .Name}}, {{.Name}}{{end}}!</div>
      <div style="font-size: 16px; color: #666666; line-height: 1.6; margin-top: 20px;">
        Você está a um passo de completar seu cadastro no <strong>GymSync</strong>.
        Use o código abaixo para verificar seu email e ativar sua conta de administrador.
      </div>
      <div style="background: #f8f9fa; border: 2px solid #dee2e6; border-radius: 12px; padding: 30px; text-align: center; margin: 30px 0;">
        <div style="font-size: 14px; color: #666666; text-transform: uppercase;">Seu Código de Verificação</div>
        <div style="font-size: 48px; font-weight: bold; color: #1a1a1a; letter-spacing: 12px; font-family: 'Courier New', monospace;">{{.Code}}</div>
      </div>
      <div style="background-color: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; margin: 20px 0;">
        <p style="font-size: 14px; color: #856404; margin: 0;"><strong>Atenção:</strong> Este código expira em <strong>10 minutos</strong>.</p>
      </div>
      <div style="font-size: 16px; color: #666666;">Se você não solicitou este código, ignore este email. Sua conta permanecerá segura.</div>
    </div>
    <div style="background-color: #f8f9fa; padding: 30px; text-align: center; border-top: 1px solid #dee2e6;">
      <p style="font-size: 14px; color: #6c757d;"><strong>GymSync</strong> — Sistema de Gerenciamento de Academia</p>
      <p style="font-size: 14px; color: #6c757d;">Este é um email automático. Por favor, não responda.</p>
    </div>
  </div>
</body>
</html>`))

var passwordResetHTMLTmpl = template.Must(template.New("password-reset").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="UTF-8"><title>Recuperação de Senha - GymSync</title></head>
<body style="font-family: 'Segoe UI', Tahoma, sans-serif; background-color: #f4f4f4; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 12px; overflow: hidden;">
    <div style="background: #1a1a1a; padding: 40px 20px; text-align: center;">
      <div style="font-size: 32px; font-weight: bold; color: #ffffff; letter-spacing: 2px;">GYMSYNC</div>
    </div>
    <div style="padding: 40px 30px;">
      <div style="font-size: 18px; color: #333333;">Olá!</div>
      <div style="font-size: 16px; color: #666666; line-height: 1.6; margin-top: 20px;">
        Recebemos uma solicitação para redefinir a senha da sua conta.
        Clique no botão abaixo para criar uma nova senha.
      </div>
      <div style="text-align: center; margin: 30px 0;">
        <a href="{{.ResetLink}}" style="background: #1a1a1a; color: #ffffff; text-decoration: none; padding: 16px 40px; border-radius: 12px; font-size: 16px; font-weight: bold; display: inline-block;">Redefinir Senha</a>
      </div>
      <div style="background-color: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; margin: 20px 0;">
        <p style="font-size: 14px; color: #856404; margin: 0;"><strong>Atenção:</strong> Este link expira em <strong>1 hora</strong> por motivos de segurança.</p>
      </div>
      <div style="font-size: 14px; color: #666666;">
        Se o botão não funcionar, copie e cole este link no seu navegador:<br>{{.ResetLink}}
      </div>
    </div>
    <div style="background-color: #f8f9fa; padding: 30px; text-align: center; border-top: 1px solid #dee2e6;">
      <p style="font-size: 14px; color: #6c757d;"><strong>GymSync</strong> — Sistema de Gerenciamento de Academia</p>
      <p style="font-size: 14px; color: #6c757d;">Se você não solicitou esta alteração, ignore este email.</p>
    </div>
  </div>
</body>
</html>`))

// VerificationEmail renders the signup verification message for a code.
func VerificationEmail(to, name, code string) (Message, error) {
	var html bytes.Buffer
	if err := verificationHTMLTmpl.Execute(&html, struct{ Name, Code string }{name, code}); err != nil {
		return Message{}, err
	}

	greeting := "Olá!"
	if name != "" {
		greeting = fmt.Sprintf("Olá, %s!", name)
	}
	text := fmt.Sprintf("%s\n\nSeu código de verificação GymSync é: %s\n\nEste código expira em 10 minutos.\nSe você não solicitou este código, ignore este email.\n", greeting, code)

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Seu código de verificação: %s", code),
		HTML:    html.String(),
		Text:    text,
	}, nil
}

// PasswordResetEmail renders the password recovery message for a reset link.
func PasswordResetEmail(to, resetLink string) (Message, error) {
	var html bytes.Buffer
	if err := passwordResetHTMLTmpl.Execute(&html, struct{ ResetLink string }{resetLink}); err != nil {
		return Message{}, err
	}

	text := fmt.Sprintf("Recebemos uma solicitação para redefinir a senha da sua conta GymSync.\n\nAcesse o link para criar uma nova senha (expira em 1 hora):\n%s\n\nSe você não solicitou esta alteração, ignore este email.\n", resetLink)

	return Message{
		To:      to,
		Subject: "Recuperação de Senha - GymSync",
		HTML:    html.String(),
		Text:    text,
	}, nil
}
